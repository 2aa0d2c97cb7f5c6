// Package main provides the rosterflow binary entry point.
// Rosterflow is a staff scheduling service that combines a deterministic
// constraint-resolution engine with an advisory LLM oracle.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	// Register LLM providers via init()
	_ "github.com/c360studio/rosterflow/llm/providers"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/c360studio/rosterflow/config"
	"github.com/c360studio/rosterflow/laws"
	"github.com/c360studio/rosterflow/llm"
	"github.com/c360studio/rosterflow/model"
	"github.com/c360studio/rosterflow/pipeline"
	scheduleapi "github.com/c360studio/rosterflow/processor/schedule-api"
	"github.com/c360studio/rosterflow/schedule"
	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/natsclient"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "rosterflow"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "rosterflow",
		Short: "Staff scheduling service",
		Long: `Rosterflow generates staff schedules from task and employee rosters.

A deterministic constraint engine owns every placement decision:
certifications, time conflicts, capacity, and labor-law rules. An
optional LLM oracle advises on planning, ordering, and review, but its
output is never trusted beyond a suggestion.

Requests arrive over NATS JetStream or the HTTP API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(configPath, logLevel)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(scheduleCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func runService(configPath, logLevel string) error {
	logger := newLogger(logLevel)
	slog.SetDefault(logger)

	cfg, err := loadConfig(configPath, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	natsClient, err := connectToNATS(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer natsClient.Close(ctx)

	if err := ensureStreams(ctx, cfg, natsClient, logger); err != nil {
		return err
	}

	if err := initModelRegistry(cfg, logger); err != nil {
		return err
	}

	// Advisory call records are best effort. The run proceeds without
	// them when the store cannot be initialized.
	if err := llm.InitGlobalCallStore(natsClient, llm.WithStoreLogger(logger)); err != nil {
		logger.Warn("Failed to initialize advisory call store", "error", err)
	} else {
		logger.Debug("Advisory call store initialized")
	}

	comp, err := buildComponent(cfg, natsClient, logger)
	if err != nil {
		return err
	}

	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := comp.Start(signalCtx); err != nil {
		return fmt.Errorf("start schedule-api: %w", err)
	}

	httpServer := startHTTPServer(cfg, comp, logger)

	logger.Info("Rosterflow ready",
		"version", Version,
		"http_addr", cfg.HTTP.Addr,
		"stream", cfg.NATS.Stream,
		"oracle_enabled", cfg.Oracle.Enabled)

	<-signalCtx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown", "error", err)
	}

	if err := comp.Stop(30 * time.Second); err != nil {
		logger.Error("Error stopping schedule-api", "error", err)
	}

	logger.Info("Rosterflow shutdown complete")
	return nil
}

func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig(configPath string, logger *slog.Logger) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.NewLoader(logger).Load()
}

func connectToNATS(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*natsclient.Client, error) {
	natsURL := cfg.NATS.URL

	logger.Info("Connecting to NATS", "url", natsURL)

	client, err := natsclient.NewClient(natsURL,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, natsURL)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, wrapNATSError(err, natsURL)
	}

	logger.Info("Connected to NATS", "url", natsURL)
	return client, nil
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

To start NATS:
  docker compose up -d nats

Or set ROSTERFLOW_NATS_URL to point to your NATS server.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}

func ensureStreams(ctx context.Context, cfg *config.Config, natsClient *natsclient.Client, logger *slog.Logger) error {
	logger.Debug("Creating JetStream streams")

	js, err := natsClient.JetStream()
	if err != nil {
		return fmt.Errorf("get JetStream context: %w", err)
	}

	streams := []jetstream.StreamConfig{
		{
			Name:     cfg.NATS.Stream,
			Subjects: []string{"schedule.>"},
			MaxAge:   24 * time.Hour,
		},
		{
			Name:     "ADVISORY",
			Subjects: []string{"advisory.>"},
			MaxAge:   24 * time.Hour,
		},
	}

	for _, sc := range streams {
		if _, err := js.CreateOrUpdateStream(ctx, sc); err != nil {
			return fmt.Errorf("ensure stream %s: %w", sc.Name, err)
		}
	}

	logger.Debug("JetStream streams ready")
	return nil
}

func initModelRegistry(cfg *config.Config, logger *slog.Logger) error {
	if !cfg.Oracle.Enabled {
		logger.Info("Advisory oracle disabled, deterministic scheduling only")
		model.InitGlobal(model.NewDefaultRegistry())
		return nil
	}

	if cfg.Oracle.RegistryPath == "" {
		logger.Info("Using built-in model registry")
		model.InitGlobal(model.NewDefaultRegistry())
		return nil
	}

	registry, err := model.LoadFromFile(cfg.Oracle.RegistryPath)
	if err != nil {
		return fmt.Errorf("load model registry %s: %w", cfg.Oracle.RegistryPath, err)
	}
	model.InitGlobal(registry)
	logger.Info("Model registry loaded",
		"path", cfg.Oracle.RegistryPath,
		"endpoints", len(registry.ListEndpoints()))
	return nil
}

// buildComponentConfig translates service configuration into schedule-api
// component configuration.
func buildComponentConfig(cfg *config.Config) (json.RawMessage, error) {
	componentConfig := map[string]any{
		"stream_name":     cfg.NATS.Stream,
		"request_subject": cfg.NATS.RequestSubject,
		"result_subject":  cfg.NATS.ResultSubject,
		"oracle_disabled": !cfg.Oracle.Enabled,
		"laws_path":       cfg.Laws.Path,
		"watch_laws":      cfg.Laws.Watch,
		"vacation_policy": cfg.Scheduling.VacationPolicy,
	}
	data, err := json.Marshal(componentConfig)
	if err != nil {
		return nil, fmt.Errorf("marshal component config: %w", err)
	}
	return data, nil
}

func buildComponent(cfg *config.Config, natsClient *natsclient.Client, logger *slog.Logger) (*scheduleapi.Component, error) {
	raw, err := buildComponentConfig(cfg)
	if err != nil {
		return nil, err
	}

	disc, err := scheduleapi.NewComponent(raw, component.Dependencies{
		NATSClient: natsClient,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create schedule-api: %w", err)
	}

	comp, ok := disc.(*scheduleapi.Component)
	if !ok {
		return nil, fmt.Errorf("unexpected component type %T", disc)
	}
	return comp, nil
}

func startHTTPServer(cfg *config.Config, comp *scheduleapi.Component, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	comp.RegisterHTTPHandlers(cfg.HTTP.Prefix, mux)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTP.Addr, "prefix", cfg.HTTP.Prefix)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// scheduleCmd runs a single scheduling request offline, without NATS or the
// advisory oracle. Useful for testing rosters and law files locally.
func scheduleCmd() *cobra.Command {
	var (
		lawsPath       string
		vacationPolicy string
	)

	cmd := &cobra.Command{
		Use:   "schedule <request.json>",
		Short: "Generate a schedule from a request file",
		Long: `Reads a scheduling request from a JSON file, runs the deterministic
pipeline, and prints the finished schedule to stdout. The advisory
oracle is not consulted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd.Context(), args[0], lawsPath, vacationPolicy)
		},
	}

	cmd.Flags().StringVar(&lawsPath, "laws", "", "Labor-law rule file (YAML) overlaying built-in rules")
	cmd.Flags().StringVar(&vacationPolicy, "vacation-policy", "none", "Unsuggested-vacation behavior (none, fairness)")

	return cmd
}

func runSchedule(ctx context.Context, requestPath, lawsPath, vacationPolicy string) error {
	data, err := os.ReadFile(requestPath)
	if err != nil {
		return fmt.Errorf("read request file: %w", err)
	}

	var req schedule.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse request file: %w", err)
	}

	policy := schedule.VacationPolicy(vacationPolicy)
	switch policy {
	case schedule.VacationPolicyNone, schedule.VacationPolicyFairness:
	default:
		return fmt.Errorf("vacation policy must be %q or %q",
			schedule.VacationPolicyNone, schedule.VacationPolicyFairness)
	}

	rules := laws.NewRegistry()
	if lawsPath != "" {
		if err := laws.LoadInto(rules, lawsPath); err != nil {
			return fmt.Errorf("load law rules: %w", err)
		}
	}

	orchestrator := pipeline.NewOrchestrator(nil, rules,
		pipeline.WithVacationPolicy(policy),
	)

	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := orchestrator.Run(ctx, &req)
	if err != nil {
		return fmt.Errorf("generate schedule: %w", err)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
