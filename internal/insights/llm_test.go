package insights

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockChatClient is a mock implementation of ChatClient
type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func reply(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}
}

func TestParseInsights_CodeFence(t *testing.T) {
	text := "```json\n{\"insights\":[{\"title\":\"Plant trees\",\"description\":\"Low NDVI\",\"severity\":\"HIGH\",\"recommendation\":\"Plant 500 trees\"}]}\n```"

	insights, err := parseInsights(text, fixedNow)
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, "Plant trees", insights[0].Title)
	assert.Equal(t, SeverityHigh, insights[0].Severity)
	assert.Equal(t, "insight-1792231200000-0", insights[0].ID)
}

func TestParseInsights_RecommendationsKeyAndDefaults(t *testing.T) {
	text := `{"recommendations":[{"title":"A","recommendation":"do a"},{"title":"","recommendation":"skipped"},{"title":"B","recommendation":"do b","severity":"urgent"}]}`

	insights, err := parseInsights(text, fixedNow)
	require.NoError(t, err)
	require.Len(t, insights, 2)
	assert.Equal(t, SeverityMedium, insights[0].Severity)
	assert.Equal(t, "B", insights[1].Title)
	assert.Equal(t, SeverityMedium, insights[1].Severity)
	assert.NotEqual(t, insights[0].ID, insights[1].ID)
}

func TestParseInsights_CapsCount(t *testing.T) {
	items := make([]rawInsight, 8)
	for i := range items {
		items[i] = rawInsight{Title: "t", Recommendation: "r"}
	}
	payload, _ := json.Marshal(rawReply{Insights: items})

	insights, err := parseInsights(string(payload), fixedNow)
	require.NoError(t, err)
	assert.Len(t, insights, MaxInsights)
}

func TestParseInsights_Errors(t *testing.T) {
	for _, text := range []string{"", "```json\n```", "I cannot help with that", `{"insights":[]}`, `{"other":1}`} {
		_, err := parseInsights(text, fixedNow)
		assert.Error(t, err, "text %q", text)
	}
}

func TestLLMSource_Generate(t *testing.T) {
	client := new(MockChatClient)
	client.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == "test-model" &&
			len(req.Messages) == 2 &&
			strings.Contains(req.Messages[1].Content, "Springfield") &&
			strings.Contains(req.Messages[1].Content, "Vegetation Index (NDVI): 0.3")
	})).Return(reply(`{"insights":[{"title":"Greening","description":"d","severity":"high","recommendation":"r"}]}`), nil)

	src := NewLLMSource(client, LLMConfig{Model: "test-model"})

	insights, err := src.Generate(context.Background(), rulesRequest(30, 0.3, 20))
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, "Greening", insights[0].Title)
	client.AssertExpectations(t)
}

func TestLLMSource_MaxTokensAndUnknownLocation(t *testing.T) {
	client := new(MockChatClient)
	client.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.MaxCompletionTokens == 256 &&
			strings.Contains(req.Messages[1].Content, "environmental data for Unknown Location:")
	})).Return(reply(`{"insights":[{"title":"Heat","description":"d","severity":"low","recommendation":"r"}]}`), nil)

	src := NewLLMSource(client, LLMConfig{Model: "test-model", MaxTokens: 256})

	req := rulesRequest(30, 0.6, 20)
	req.Location = ""
	insights, err := src.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, insights, 1)
	client.AssertExpectations(t)
}

func TestLLMSource_ClientError(t *testing.T) {
	client := new(MockChatClient)
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, errors.New("rate limited"))

	src := NewLLMSource(client, LLMConfig{})

	_, err := src.Generate(context.Background(), rulesRequest(30, 0.3, 20))
	assert.Error(t, err)
}

func TestLLMSource_NoChoices(t *testing.T) {
	client := new(MockChatClient)
	client.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, nil)

	src := NewLLMSource(client, LLMConfig{})

	_, err := src.Generate(context.Background(), rulesRequest(30, 0.3, 20))
	assert.Error(t, err)
}

func TestLLMSource_OpenAICompatibleServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]string{
					"role":    "assistant",
					"content": "```json\n{\"insights\":[{\"title\":\"Cool roofs\",\"severity\":\"low\",\"recommendation\":\"Paint roofs white\"}]}\n```",
				},
			}},
		})
	}))
	defer srv.Close()

	client := NewOpenAIClient(LLMConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
	src := NewLLMSource(client, LLMConfig{Model: "test-model"})

	insights, err := src.Generate(context.Background(), rulesRequest(30, 0.6, 33))
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, "Cool roofs", insights[0].Title)
	assert.Equal(t, SeverityLow, insights[0].Severity)
}
