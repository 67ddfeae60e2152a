// Package llm drafts LinkedIn posts through an OpenAI-compatible chat
// completions API. Any endpoint speaking that protocol works, including a
// local Ollama runtime; the authorization header is only sent when an API
// key is configured.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ContentAgent/internal/config"
	"ContentAgent/internal/domain"
	"ContentAgent/internal/ports"
)

// Client implements the post-writer port against a chat completions
// endpoint.
type Client struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.PostWriter = (*Client)(nil)

// NewClient builds a client from generator configuration.
func NewClient(cfg config.GeneratorConfig) *Client {
	return &Client{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
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
}

// Draft asks the model for one post built from the candidate's curated
// metadata.
func (c *Client) Draft(ctx context.Context, candidate domain.Candidate) (string, error) {
	if c == nil {
		return "", fmt.Errorf("generator client is nil")
	}
	if c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("generator client misconfigured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: safePrompt(c.systemPrompt)},
			{Role: "user", Content: draftPrompt(candidate)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal draft request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("draft post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("generator error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response carried no choices")
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("response carried an empty post")
	}
	return text, nil
}

// draftPrompt lays out the curated metadata the model should build on.
func draftPrompt(candidate domain.Candidate) string {
	var b strings.Builder
	b.WriteString("Draft a LinkedIn post about this article.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", candidate.Title)
	fmt.Fprintf(&b, "Source: %s\n", candidate.Source)
	fmt.Fprintf(&b, "URL: %s\n", candidate.CanonicalURL)
	fmt.Fprintf(&b, "Summary: %s\n", candidate.Summary)
	fmt.Fprintf(&b, "Angle: %s\n", candidate.LinkedinAngle)
	if len(candidate.Hashtags) > 0 {
		fmt.Fprintf(&b, "Hashtags: #%s\n", strings.Join(candidate.Hashtags, " #"))
	}
	return b.String()
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You draft concise LinkedIn posts for security practitioners."
	}
	return prompt
}
