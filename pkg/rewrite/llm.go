package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/synaptica-ai/admission-review/pkg/common/httpclient"
	"golang.org/x/oauth2"
)

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// LLMClient rewrites notes through an OpenAI-compatible chat-completions
// endpoint. A single attempt is made per call.
type LLMClient struct {
	cfg    Config
	client *http.Client
}

func NewLLMClient(cfg Config) *LLMClient {
	client := httpclient.New(cfg.Timeout)
	if cfg.APIKey != "" {
		client.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"}),
			Base:   client.Transport,
		}
	}
	return &LLMClient{cfg: cfg, client: client}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	Temperature         float64       `json:"temperature"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *LLMClient) Rewrite(ctx context.Context, note, supporting string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", newError(KindConfig, "LLM_API_KEY is not set")
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(note, supporting)},
		},
		Temperature:         c.cfg.Temperature,
		MaxCompletionTokens: c.cfg.MaxTokens,
	})
	if err != nil {
		return "", newError(KindConfig, "encode request: %v", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", newError(KindConfig, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &RewriteError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RewriteError{Kind: KindTransport, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newError(KindStatus, "LLM returned %d: %s", resp.StatusCode, snippet(body))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", newError(KindDecode, "decode response: %v", err)
	}
	if len(result.Choices) == 0 {
		return "", newError(KindEmpty, "no response from LLM")
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", newError(KindEmpty, "LLM returned empty content")
	}
	return content, nil
}

func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if r := []rune(s); len(r) > max {
		return string(r[:max]) + "..."
	}
	return s
}
