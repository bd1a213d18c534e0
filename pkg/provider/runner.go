package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// runnerHTTPTimeout caps a single runner call independent of the
// caller's context.
const runnerHTTPTimeout = 120 * time.Second

// runnerClient speaks the Ollama-style HTTP API shared by the daemon
// and on-device backends: POST /api/generate, GET /api/tags.
type runnerClient struct {
	baseURL string
	client  *http.Client
}

func newRunnerClient(baseURL string) *runnerClient {
	return &runnerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: runnerHTTPTimeout},
	}
}

type runnerOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

type runnerGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options runnerOptions `json:"options"`
}

// generate posts a completion request and returns the response text.
func (c *runnerClient) generate(ctx context.Context, genReq runnerGenerateRequest) (string, error) {
	body, err := json.Marshal(genReq)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate status %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return strings.TrimSpace(result.Response), nil
}

// health probes the model listing endpoint.
func (c *runnerClient) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("health call: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health status %d", resp.StatusCode)
	}
	return nil
}

// foldPrompt renders recent exchanges and the new prompt as the
// role-labeled transcript local runners complete from.
func foldPrompt(history *History, prompt string) string {
	var b strings.Builder
	for _, exchange := range history.Recent(contextExchanges) {
		b.WriteString("Human: ")
		b.WriteString(exchange.User)
		b.WriteString("\nAssistant: ")
		b.WriteString(exchange.Assistant)
		b.WriteString("\n")
	}
	b.WriteString("Human: ")
	b.WriteString(prompt)
	b.WriteString("\nAssistant:")
	return b.String()
}
