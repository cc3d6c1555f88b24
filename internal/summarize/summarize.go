// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize produces one-line summaries of resolution steps for
// progress output, via the Claude Messages API. Summaries are cosmetic:
// any failure falls back to the raw step text upstream.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
)

// stepPromptTmpl is the prompt sent for each resolution step log line.
var stepPromptTmpl = template.Must(template.New("step").Parse(`Summarize the following publication-search step in one short sentence for a progress log. Mention tool names and identifiers (accessions, PMIDs, PMCIDs, DOIs) when present. Respond with the sentence only.

Step:
{{.Step}}
`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-3-5-haiku-latest"

// ClaudeSummarizer calls the Claude Messages API to summarize steps.
type ClaudeSummarizer struct {
	APIKey string
	Model  string
	Client *http.Client
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// SummarizeStep returns a one-sentence summary of a step log line.
func (c *ClaudeSummarizer) SummarizeStep(ctx context.Context, step string) (string, error) {
	var prompt bytes.Buffer
	if err := stepPromptTmpl.Execute(&prompt, struct{ Step string }{Step: step}); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	reqBody := claudeRequest{
		Model:     model,
		MaxTokens: 256,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt.String()},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("no text content in Claude API response")
}

// Mock is a no-API summarizer used in tests and when summarization is
// enabled without a credential.
type Mock struct{}

// SummarizeStep echoes the step with a prefix.
func (Mock) SummarizeStep(_ context.Context, step string) (string, error) {
	return "step summary (mock): " + step, nil
}
