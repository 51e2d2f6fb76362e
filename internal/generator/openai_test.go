package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abhishyantkhare/marathon-trainer/internal/config"
	"github.com/abhishyantkhare/marathon-trainer/internal/domain"
	"github.com/abhishyantkhare/marathon-trainer/internal/planner"
)

func testParams(t *testing.T) Params {
	t.Helper()
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	raceDate := today.AddDate(0, 0, 140)

	paces, err := planner.DerivePaces(240)
	if err != nil {
		t.Fatalf("DerivePaces returned error: %v", err)
	}
	p, err := planner.PlanPeriodization(raceDate, today, domain.FitnessIntermediate)
	if err != nil {
		t.Fatalf("PlanPeriodization returned error: %v", err)
	}

	return Params{
		RaceDate:        raceDate,
		Today:           today,
		GoalTimeMinutes: 240,
		GoalTime:        planner.FormatGoalTime(240),
		FitnessLevel:    domain.FitnessIntermediate,
		WeekCount:       p.WeekCount,
		PeakWeek:        p.PeakWeek,
		Paces:           paces,
		Mileage:         p.Mileage,
	}
}

// completionServer fakes an OpenAI-compatible chat completions endpoint.
func completionServer(t *testing.T, handler http.HandlerFunc) PlanGenerator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIGenerator(config.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "gpt-4o",
	})
}

func completionBody(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestGeneratePlan_Success(t *testing.T) {
	var gotReq chatRequest
	gen := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("request path = %q, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization header = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody(`{"race_name": "Marathon"}`)))
	})

	raw, err := gen.GeneratePlan(context.Background(), testParams(t))
	if err != nil {
		t.Fatalf("GeneratePlan returned error: %v", err)
	}
	if string(raw) != `{"race_name": "Marathon"}` {
		t.Errorf("raw = %q", raw)
	}

	if gotReq.Model != "gpt-4o" {
		t.Errorf("request model = %q, want gpt-4o", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("request has %d messages, want 2", len(gotReq.Messages))
	}
	prompt := gotReq.Messages[1].Content
	for _, want := range []string{"20-week marathon training plan", "4:00:00", "intermediate", "~40km/week", "~75km/week", "2026-07-20"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGeneratePlan_StripsMarkdownFences(t *testing.T) {
	gen := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("```json\n{\"total_weeks\": 20}\n```")))
	})

	raw, err := gen.GeneratePlan(context.Background(), testParams(t))
	if err != nil {
		t.Fatalf("GeneratePlan returned error: %v", err)
	}
	if string(raw) != `{"total_weeks": 20}` {
		t.Errorf("raw = %q, want fences stripped", raw)
	}
}

func TestGeneratePlan_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
		}},
		{"api error payload", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit"}}`))
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": []}`))
		}},
		{"unparseable body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>gateway timeout</html>"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := completionServer(t, tt.handler)
			if _, err := gen.GeneratePlan(context.Background(), testParams(t)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestGeneratePlan_ContextCancelled(t *testing.T) {
	gen := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := gen.GeneratePlan(ctx, testParams(t)); err == nil {
		t.Error("expected error on cancelled context, got nil")
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced with language", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"leading whitespace", "  {\"a\": 1}\n", `{"a": 1}`},
		{"unterminated fence", "```json\n{\"a\": 1}", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFences(tt.content); got != tt.want {
				t.Errorf("stripCodeFences(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}
