package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	systemRoleContent = "You are an urban planning assistant. Answer with JSON only."
	unknownLocation   = "Unknown Location"
)

// ChatClient is the part of the OpenAI client the LLM source needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LLMConfig configures an LLMSource.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// NewOpenAIClient builds a chat client for any OpenAI-compatible endpoint.
func NewOpenAIClient(cfg LLMConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// LLMSource asks a chat model for insights.
type LLMSource struct {
	client ChatClient
	cfg    LLMConfig
	now    func() time.Time
}

// NewLLMSource creates an LLMSource.
func NewLLMSource(client ChatClient, cfg LLMConfig) *LLMSource {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	return &LLMSource{client: client, cfg: cfg, now: time.Now}
}

func (s *LLMSource) Name() string { return "llm" }

// Generate sends one chat completion request and parses the reply.
func (s *LLMSource) Generate(ctx context.Context, req Request) ([]Insight, error) {
	if req.Metrics == nil {
		return nil, errors.New("metrics are required")
	}

	chatReq := openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemRoleContent},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
		},
		Temperature: s.cfg.Temperature,
	}
	if s.cfg.MaxTokens > 0 {
		chatReq.MaxCompletionTokens = s.cfg.MaxTokens
	}

	resp, err := s.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	return parseInsights(resp.Choices[0].Message.Content, s.now())
}

func buildPrompt(req Request) string {
	m := req.Metrics
	location := req.Location
	if location == "" {
		location = unknownLocation
	}

	var b strings.Builder
	fmt.Fprintf(&b, "As an urban planning AI assistant, analyze this environmental data for %s:\n\n", location)
	fmt.Fprintf(&b, "- Air Quality Index: %g AQI\n", m.AirQuality)
	fmt.Fprintf(&b, "- Vegetation Index (NDVI): %g\n", m.VegetationIndex)
	fmt.Fprintf(&b, "- Temperature: %g°C\n", m.Temperature)
	fmt.Fprintf(&b, "- Water Quality: %g pH\n\n", m.WaterQuality)
	b.WriteString(`Generate 3 specific, actionable recommendations for urban planning improvements. For each recommendation, provide:
1. A clear title
2. Brief description of the issue
3. Severity level (low, medium, or high)
4. Detailed recommendation with estimated costs and expected impact

Respond ONLY with a valid JSON object in this exact format:
{
  "insights": [
    {
      "title": "string",
      "description": "string",
      "severity": "low|medium|high",
      "recommendation": "string"
    }
  ]
}`)
	return b.String()
}

var fencePattern = regexp.MustCompile("```(?:json)?\\s*")

type rawInsight struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
}

type rawReply struct {
	Insights        []rawInsight `json:"insights"`
	Recommendations []rawInsight `json:"recommendations"`
}

// parseInsights reads a model reply, tolerating markdown code fences and
// either an "insights" or a "recommendations" array.
func parseInsights(text string, at time.Time) ([]Insight, error) {
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
	if cleaned == "" {
		return nil, errors.New("empty model reply")
	}

	var reply rawReply
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		return nil, fmt.Errorf("parse model reply: %w", err)
	}

	items := reply.Insights
	if len(items) == 0 {
		items = reply.Recommendations
	}

	out := make([]Insight, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.Recommendation) == "" {
			continue
		}
		out = append(out, Insight{
			ID:             insightID(at, len(out)),
			Title:          strings.TrimSpace(item.Title),
			Description:    strings.TrimSpace(item.Description),
			Severity:       ParseSeverity(item.Severity),
			Recommendation: strings.TrimSpace(item.Recommendation),
		})
		if len(out) == MaxInsights {
			break
		}
	}

	if len(out) == 0 {
		return nil, errors.New("model reply contained no usable insights")
	}
	return out, nil
}
