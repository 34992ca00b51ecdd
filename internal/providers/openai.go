package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	defaultOpenAIURL   = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel = "gpt-4o-mini"
)

// OpenAI implements Reviewer for OpenAI's chat completions API.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAI creates an OpenAI provider. EBERT_OPENAI_BASE_URL overrides the
// endpoint for compatible gateways.
func NewOpenAI(model string) *OpenAI {
	if model == "" {
		model = defaultOpenAIModel
	}
	baseURL := os.Getenv("EBERT_OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &OpenAI{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (o *OpenAI) Name() string  { return "openai" }
func (o *OpenAI) Model() string { return o.model }

func (o *OpenAI) Available() bool { return o.apiKey != "" }

func (o *OpenAI) availabilityReason() string {
	if o.apiKey != "" {
		return "OPENAI_API_KEY set"
	}
	return "OPENAI_API_KEY not set"
}

func (o *OpenAI) Review(ctx context.Context, req Request) (Response, error) {
	if o.apiKey == "" {
		return Response{}, &Error{Provider: o.Name(), Kind: KindAuth, Message: "OPENAI_API_KEY is not set"}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	body := openaiRequest{
		Model: o.model,
		Messages: []openaiMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		MaxTokens: maxTokens,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		return Response{}, netError(o.Name(), err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, netError(o.Name(), err)
	}
	if httpResp.StatusCode != 200 {
		return Response{}, classifyStatus(o.Name(), httpResp.StatusCode, string(respBody))
	}

	var result openaiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Response{}, badResponse(o.Name(), "undecodable response body: "+err.Error())
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return Response{}, badResponse(o.Name(), "no text content in response")
	}

	return Response{
		Content:    result.Choices[0].Message.Content,
		Model:      o.model,
		TokensUsed: result.Usage.TotalTokens,
		Duration:   time.Since(start),
	}, nil
}

type openaiRequest struct {
	Model     string          `json:"model"`
	Messages  []openaiMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

type openaiUsage struct {
	TotalTokens int `json:"total_tokens"`
}
