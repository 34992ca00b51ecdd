package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultOllamaHost   = "http://localhost:11434"
	defaultOllamaModel  = "codellama"
	ollamaHealthTimeout = 5 * time.Second
)

// Ollama implements Reviewer for a local Ollama server.
type Ollama struct {
	model   string
	baseURL string
	client  *http.Client
}

// NewOllama creates an Ollama provider. OLLAMA_HOST overrides the endpoint.
func NewOllama(model string) *Ollama {
	if model == "" {
		model = defaultOllamaModel
	}
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = defaultOllamaHost
	}
	return &Ollama{
		model:   model,
		baseURL: strings.TrimRight(host, "/"),
		client:  &http.Client{Timeout: 300 * time.Second},
	}
}

func (o *Ollama) Name() string  { return "ollama" }
func (o *Ollama) Model() string { return o.model }

// Available probes the local server's tag listing with a short timeout. It
// never returns an error; an unreachable endpoint is simply unavailable.
func (o *Ollama) Available() bool {
	client := &http.Client{Timeout: ollamaHealthTimeout}
	resp, err := client.Get(o.baseURL + "/api/tags")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == 200
}

func (o *Ollama) availabilityReason() string {
	if o.Available() {
		return "reachable"
	}
	return "not reachable at " + o.baseURL
}

func (o *Ollama) Review(ctx context.Context, req Request) (Response, error) {
	body := ollamaRequest{
		Model:  o.model,
		Prompt: req.System + "\n\n" + req.User,
		Stream: false,
		Format: "json",
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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

	var result ollamaResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Response{}, badResponse(o.Name(), "undecodable response body: "+err.Error())
	}
	if result.Response == "" {
		return Response{}, badResponse(o.Name(), "empty response field")
	}

	return Response{
		Content:    result.Response,
		Model:      o.model,
		TokensUsed: result.PromptEvalCount + result.EvalCount,
		Duration:   time.Since(start),
	}, nil
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type ollamaResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}
