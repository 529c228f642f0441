package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mzanetti/turfdesk/internal/reliability"
)

const defaultCompletionsURL = "https://api.openai.com/v1/chat/completions"

// HTTPAdapter forwards requests to an OpenAI-compatible chat completions
// endpoint. Retryable statuses are retried with capped backoff.
type HTTPAdapter struct {
	url        string
	apiKey     string
	model      string
	maxRetries int
	client     *http.Client
}

func NewHTTPAdapter(url, apiKey, model string) *HTTPAdapter {
	url = strings.TrimSpace(url)
	if url == "" {
		url = defaultCompletionsURL
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	return &HTTPAdapter{
		url:        url,
		apiKey:     apiKey,
		model:      model,
		maxRetries: 2,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (a *HTTPAdapter) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	payload, err := json.Marshal(chatRequest{Model: a.model, Messages: messages})
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := reliability.ExponentialBackoff(attempt-1, 250*time.Millisecond, 2*time.Second)
			select {
			case <-ctx.Done():
				return CompletionResponse{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, retryable, err := a.once(ctx, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable {
			return CompletionResponse{}, err
		}
	}
	return CompletionResponse{}, lastErr
}

func (a *HTTPAdapter) once(ctx context.Context, payload []byte) (CompletionResponse, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
	if err != nil {
		return CompletionResponse{}, false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	res, err := a.client.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, false, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		err := fmt.Errorf("brain http status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
		return CompletionResponse{}, reliability.IsRetryableHTTPStatus(res.StatusCode), err
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return CompletionResponse{}, true, fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return CompletionResponse{}, false, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return CompletionResponse{}, false, fmt.Errorf("brain error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return CompletionResponse{}, false, fmt.Errorf("brain returned no choices")
	}

	return CompletionResponse{Text: strings.TrimSpace(parsed.Choices[0].Message.Content)}, false, nil
}
