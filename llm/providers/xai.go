package providers

import (
	"net/http"
	"os"
	"strings"

	"github.com/c360studio/rosterflow/llm"
)

// XAIProvider implements the x.ai (Grok) API, which speaks the OpenAI wire
// format with its own host and key.
type XAIProvider struct {
	OllamaProvider // shared request/response format
}

func init() {
	llm.RegisterProvider(&XAIProvider{})
}

// Name returns the provider identifier.
func (x *XAIProvider) Name() string {
	return "xai"
}

// BuildURL constructs the x.ai chat completions endpoint.
func (x *XAIProvider) BuildURL(baseURL string) string {
	if baseURL == "" {
		baseURL = "https://api.x.ai/v1"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	if strings.HasSuffix(baseURL, "/chat/completions") {
		return baseURL
	}
	return baseURL + "/chat/completions"
}

// SetHeaders adds x.ai authentication headers. XAI_API_KEY is preferred;
// OPENAI_API_KEY works as a fallback for OpenAI-compatible tooling.
func (x *XAIProvider) SetHeaders(req *http.Request) {
	apiKey := os.Getenv("XAI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
}
