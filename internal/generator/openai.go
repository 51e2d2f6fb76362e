package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abhishyantkhare/marathon-trainer/internal/config"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"

	systemPrompt = "You are an expert marathon running coach. Generate detailed, " +
		"scientifically-backed training plans in JSON format. Always return valid JSON only."
)

// openAIClient implements PlanGenerator against an OpenAI-compatible
// chat-completions endpoint.
type openAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// message is a chat message for the completions API.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body for the completions API.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// chatResponse is the response body from the completions API.
type chatResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIGenerator creates a PlanGenerator backed by the configured
// chat-completions endpoint.
func NewOpenAIGenerator(cfg config.OpenAIConfig) PlanGenerator {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &openAIClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// GeneratePlan asks the model for a complete plan as JSON. A single attempt,
// no retries: the deterministic fallback is the retry strategy.
func (c *openAIClient) GeneratePlan(ctx context.Context, params Params) ([]byte, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(params)},
		},
		Temperature: 0.7,
		MaxTokens:   8000,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completion status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("parse chat response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("chat completion error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	return []byte(stripCodeFences(chatResp.Choices[0].Message.Content)), nil
}

// stripCodeFences removes a surrounding markdown code block, which models
// sometimes add despite being told not to.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}
	lines = lines[1:]
	if strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

const dateLayout = "2006-01-02"

// buildPrompt renders the generation request. The prompt pins the exact JSON
// schema so the response can be validated against the same contract the
// fallback synthesizer produces.
func buildPrompt(p Params) string {
	return fmt.Sprintf(`Generate a detailed %d-week marathon training plan in JSON format.

Runner Profile:
- Race Date: %s
- Goal Time: %s (%d minutes)
- Fitness Level: %s
- Weeks until race: %d

Target Paces:
- Easy runs: %s
- Long runs: %s
- Tempo runs: %s
- Intervals: %s
- Race pace: %s

Weekly Mileage Guidelines:
- Starting: ~%.0fkm/week
- Peak (around week %d): ~%.0fkm/week
- Taper (final 2-3 weeks): ~%.0fkm/week

Generate a JSON object with this exact structure:
{
  "race_name": "Marathon",
  "race_date": "%s",
  "goal_time": "%s",
  "total_weeks": %d,
  "weeks": [
    {
      "week_number": 1,
      "start_date": "YYYY-MM-DD",
      "end_date": "YYYY-MM-DD",
      "theme": "Base Building",
      "total_distance_km": 35.0,
      "workouts": [
        {
          "day": "Monday",
          "workout_type": "rest",
          "description": "Complete rest or light stretching",
          "distance_km": null,
          "pace_target": null,
          "notes": "Recovery day"
        },
        {
          "day": "Tuesday",
          "workout_type": "easy_run",
          "description": "Easy aerobic run",
          "distance_km": 8.0,
          "pace_target": "%s",
          "notes": "Keep heart rate in zone 2"
        }
      ]
    }
  ],
  "notes": "General training notes and advice"
}

Workout types: easy_run, tempo, long_run, intervals, rest, cross_training

Important guidelines:
1. Include a long run every weekend (Sunday preferred)
2. Include one quality workout per week (tempo or intervals)
3. Include 1-2 rest days per week
4. Gradually build mileage (max 10%% increase per week)
5. Include a 3-week taper before race day
6. The final week should be very light with the race on the last day
7. Calculate start_date and end_date for each week starting from today (%s)

Return ONLY valid JSON, no additional text or markdown.`,
		p.WeekCount,
		p.RaceDate.Format(dateLayout),
		p.GoalTime, p.GoalTimeMinutes,
		p.FitnessLevel,
		p.WeekCount,
		p.Paces.Easy,
		p.Paces.LongRun,
		p.Paces.Tempo,
		p.Paces.Intervals,
		p.Paces.Race,
		p.Mileage.StartKm,
		p.PeakWeek, p.Mileage.PeakKm,
		p.Mileage.TaperKm,
		p.RaceDate.Format(dateLayout),
		p.GoalTime,
		p.WeekCount,
		p.Paces.Easy,
		p.Today.Format(dateLayout),
	)
}
