// Package generate talks to a Groq-compatible chat-completions API to
// produce fresh daily question sets. Output is validated strictly; any
// error, timeout, or malformed payload makes the caller fall back to the
// deterministic selector, so nothing here is load-bearing for correctness.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"health-checkin-service/internal/domain"
	"health-checkin-service/internal/platform/logger"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.3-70b-versatile"
	defaultTimeout = 20 * time.Second
)

// minQuestions is the smallest generated set accepted as valid.
const minQuestions = 5

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *logger.Logger
}

type Option func(*Client)

func WithBaseURL(url string) Option { return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") } }
func WithModel(model string) Option { return func(c *Client) { c.model = model } }
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func NewClient(apiKey string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateSet asks the model for today's question set. The model produces
// the scoring weights as part of generation; nothing downstream may invent
// or alter them.
func (c *Client) GenerateSet(ctx context.Context, date string) ([]domain.Question, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a health gamification expert. Respond with valid JSON arrays only."},
			{Role: "user", Content: buildPrompt(date)},
		},
		MaxTokens:   2000,
		Temperature: 0.8,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completions: status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("chat completions: empty choices")
	}

	questions, err := ParseQuestions(parsed.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	c.log.Debug("generated daily question set", "date", date, "count", len(questions))
	return questions, nil
}

// ParseQuestions unmarshals and validates model output. Markdown fences are
// tolerated; anything structurally off is rejected so the caller can fall
// back.
func ParseQuestions(raw string) ([]domain.Question, error) {
	raw = stripFences(raw)

	var questions []domain.Question
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	if len(questions) < minQuestions {
		return nil, fmt.Errorf("generated set too small: %d questions", len(questions))
	}
	for i, q := range questions {
		if q.ID == "" || q.Category == "" || q.Text == "" || q.FeatureKey == "" {
			return nil, fmt.Errorf("question %d missing required fields", i)
		}
		if q.Weight <= 0 {
			return nil, fmt.Errorf("question %d has invalid weight", i)
		}
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("question %d has no options", i)
		}
	}
	return questions, nil
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	parts := strings.Split(raw, "```")
	if len(parts) < 2 {
		return raw
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}

func buildPrompt(date string) string {
	return fmt.Sprintf(`You are a health gamification expert designing daily check-in questions for a health app.

Today's date: %s

Generate exactly 7 short, engaging, gamified multiple-choice health questions for today.
Use these categories (at least 1 per category): sleep, diet, activity, mental, location.

Rules:
- Questions must be answerable in under 30 seconds
- Use emojis to make them fun and engaging
- Options must have 3-4 choices, ordered from worst to best health outcome
- Each option has a hidden numeric value (0=worst up to 3=best) that is never shown to the user
- Vary questions based on the date so they feel fresh each day

Respond ONLY with a valid JSON array. No extra text. Format:
[
  {
    "question_id": "d001",
    "category": "diet",
    "question_text": "🥗 How many servings of vegetables did you eat today?",
    "options": [
      {"label": "None at all 😬", "value": 0},
      {"label": "1 serving", "value": 1},
      {"label": "2-3 servings", "value": 2},
      {"label": "4 or more! 🥦", "value": 3}
    ],
    "feature_key": "veg_servings",
    "scoring_weight": 0.20
  }
]`, date)
}
