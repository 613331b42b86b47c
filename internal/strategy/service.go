// Package strategy generates branding and content plans for audited accounts
// through an OpenAI-compatible LLM proxy. Generation is best-effort: callers
// treat a failure as a missing plan, never as a failed audit.
package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/accountdoctor/accountdoctor/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Generator produces a strategy plan from a snapshot and its audit result.
type Generator interface {
	GeneratePlan(ctx context.Context, snapshot *models.ProfileSnapshot, result *models.AuditResult) (*models.StrategyPlan, error)
	IsEnabled() bool
}

// Service calls the configured chat-completions endpoint.
type Service struct {
	baseURL string
	apiKey  string
	model   string
	client  *resty.Client
}

// Ensure Service implements Generator
var _ Generator = (*Service)(nil)

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewService creates a strategy generator against an OpenAI-compatible proxy.
func NewService(baseURL, apiKey, model string) *Service {
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client: resty.New().
			SetTimeout(90 * time.Second).
			SetHeader("User-Agent", "AccountDoctor/1.0"),
	}
}

func (s *Service) IsEnabled() bool {
	return s.baseURL != "" && s.apiKey != ""
}

const systemPrompt = `You are a social media branding consultant for small businesses.
Answer with a single JSON object and nothing else, using exactly these keys:
"positioning" (string), "content_pillars" (array of objects with "name",
"description", "example_caption"), "post_ideas" (array of strings),
"bio_rewrite" (string).`

// GeneratePlan asks the model for a plan grounded in the audit findings.
func (s *Service) GeneratePlan(ctx context.Context, snapshot *models.ProfileSnapshot, result *models.AuditResult) (*models.StrategyPlan, error) {
	if !s.IsEnabled() {
		return nil, fmt.Errorf("strategy generation disabled - missing proxy URL or API key")
	}

	request := chatRequest{
		Model:       s.model,
		Temperature: 0.7,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(snapshot, result)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetBody(request).
		Post(s.baseURL + "/chat/completions")

	if err != nil {
		return nil, fmt.Errorf("LLM request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("LLM proxy returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var chat chatResponse
	if err := json.Unmarshal(resp.Body(), &chat); err != nil {
		return nil, fmt.Errorf("failed to decode LLM response: %w", err)
	}
	if chat.Error != nil {
		return nil, fmt.Errorf("LLM proxy error: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("LLM proxy returned no choices")
	}

	plan, err := parsePlan(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	logrus.Infof("Generated strategy plan for %s (%d pillars, %d post ideas)",
		snapshot.Username, len(plan.ContentPillars), len(plan.PostIdeas))
	return plan, nil
}

func buildPrompt(snapshot *models.ProfileSnapshot, result *models.AuditResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Instagram account @%s, health score %d/100 (%s).\n", snapshot.Username, result.Score, result.Grade)
	fmt.Fprintf(&b, "Bio: %q\n", snapshot.Biography)
	fmt.Fprintf(&b, "Followers: %d, following: %d, posts: %d.\n",
		snapshot.FollowerCount, snapshot.FollowingCount, snapshot.PostCount)

	if len(result.Deductions) > 0 {
		b.WriteString("Audit found these issues:\n")
		for _, d := range result.Deductions {
			fmt.Fprintf(&b, "- %s: %s\n", d.Label, d.Remediation)
		}
	} else {
		b.WriteString("The audit found no issues; focus on growth.\n")
	}

	b.WriteString("Produce a branding strategy that addresses the issues above.")
	return b.String()
}

// parsePlan unmarshals model output, repairing the usual JSON sloppiness
// first (markdown fences, prose around the object).
func parsePlan(content string) (*models.StrategyPlan, error) {
	repaired := repairJSON(content)

	var plan models.StrategyPlan
	if err := json.Unmarshal([]byte(repaired), &plan); err != nil {
		return nil, fmt.Errorf("failed to parse strategy plan: %w", err)
	}
	if plan.Positioning == "" && len(plan.ContentPillars) == 0 && len(plan.PostIdeas) == 0 {
		return nil, fmt.Errorf("strategy plan is empty")
	}
	return &plan, nil
}

// repairJSON strips markdown fences and trims the payload to the outermost
// brace pair. It does not attempt to fix structurally broken JSON.
func repairJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}

	return content
}
