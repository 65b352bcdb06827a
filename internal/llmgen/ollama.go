package llmgen

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaGenerator talks to an Ollama-compatible HTTP endpoint.
type OllamaGenerator struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaGenerator(baseURL, model string, timeout time.Duration) *OllamaGenerator {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &OllamaGenerator{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:   model,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func (g *OllamaGenerator) Generate(ctx context.Context, req GenerateRequest, onDelta DeltaHandler) (string, error) {
	options := map[string]any{
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	payload, err := json.Marshal(ollamaRequest{
		Model:   g.model,
		Prompt:  req.Prompt,
		Stream:  req.Stream,
		Options: options,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %v: %w", err, ErrUnavailable)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", fmt.Errorf("ollama status %d: %s: %w", res.StatusCode, strings.TrimSpace(string(body)), ErrUnavailable)
	}

	if req.Stream {
		return g.consumeStream(res.Body, onDelta)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %v: %w", err, ErrUnavailable)
	}
	var chunk ollamaChunk
	if err := json.Unmarshal(body, &chunk); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if chunk.Error != "" {
		return "", fmt.Errorf("ollama error: %s: %w", chunk.Error, ErrUnavailable)
	}
	if onDelta != nil && chunk.Response != "" {
		if err := onDelta(chunk.Response); err != nil {
			return "", err
		}
	}
	return chunk.Response, nil
}

// consumeStream assembles the full text from Ollama's NDJSON token stream,
// invoking the delta handler for each fragment.
func (g *OllamaGenerator) consumeStream(body io.Reader, onDelta DeltaHandler) (string, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var out strings.Builder
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk ollamaChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			continue
		}
		if chunk.Error != "" {
			return "", fmt.Errorf("ollama error mid-stream: %s: %w", chunk.Error, ErrUnavailable)
		}
		if chunk.Response != "" {
			out.WriteString(chunk.Response)
			if onDelta != nil {
				if err := onDelta(chunk.Response); err != nil {
					return "", err
				}
			}
		}
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("stream read: %v: %w", err, ErrUnavailable)
	}
	return out.String(), nil
}
