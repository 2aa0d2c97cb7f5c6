package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/c360studio/rosterflow/schedule"
)

func TestReview_NilOracleFailsOpenWithoutDegrading(t *testing.T) {
	review, degraded := NewReviewer(nil, nil).Review(context.Background(), basicRequest(), nil, schedule.ValidationResult{}, nil)
	if degraded {
		t.Error("degraded = true, want false with no oracle configured")
	}
	if !reflect.DeepEqual(review, failOpen()) {
		t.Errorf("review = %+v, want the fail-open result", review)
	}
}

func TestReview_FailuresFailOpenExactly(t *testing.T) {
	tests := []struct {
		name  string
		reply mockReply
	}{
		{"call error", mockReply{err: errors.New("boom")}},
		{"no json", mockReply{content: "looks fine to me"}},
		{"bad json", mockReply{content: `{"approved": "yes"}`}},
	}

	want := schedule.ReviewResult{Approved: true, QualityScore: 0.5, Issues: []string{}, Improvements: []string{}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := newMockOracle(map[string]mockReply{"review": tt.reply})
			review, degraded := NewReviewer(oracle, nil).Review(context.Background(), basicRequest(), nil, schedule.ValidationResult{}, nil)
			if !degraded {
				t.Error("degraded = false, want true after a review failure")
			}
			if !reflect.DeepEqual(review, want) {
				t.Errorf("review = %+v, want exactly %+v", review, want)
			}
		})
	}
}

func TestReview_ParsedResultAccepted(t *testing.T) {
	oracle := newMockOracle(map[string]mockReply{
		"review": {content: `{"approved": false, "quality_score": 0.4, "issues": ["half the tasks are empty"], "improvements": []}`},
	})

	review, degraded := NewReviewer(oracle, nil).Review(context.Background(), basicRequest(), nil, schedule.ValidationResult{}, nil)
	if degraded {
		t.Error("degraded = true, want false for a parsed review")
	}
	if review.Approved || review.QualityScore != 0.4 || len(review.Issues) != 1 {
		t.Errorf("review = %+v, want the parsed rejection", review)
	}
}

func TestReview_ScoreClampedAndSlicesNonNil(t *testing.T) {
	oracle := newMockOracle(map[string]mockReply{
		"review": {content: `{"approved": true, "quality_score": 3.7}`},
	})

	review, _ := NewReviewer(oracle, nil).Review(context.Background(), basicRequest(), nil, schedule.ValidationResult{}, nil)
	if review.QualityScore != 1 {
		t.Errorf("QualityScore = %v, want clamped to 1", review.QualityScore)
	}
	if review.Issues == nil || review.Improvements == nil {
		t.Error("Issues/Improvements = nil, want empty slices")
	}
}
