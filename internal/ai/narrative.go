// Package ai generates plain-language narratives of pipeline results using
// an OpenAI-compatible chat completions endpoint. The feature is optional:
// without an API key the rest of the program works unchanged.
package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/httputil"
	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/pipeline"
)

const systemPrompt = "You are a literacy programme analyst. You summarise early grade " +
	"reading assessment results for programme managers in clear, non-technical English. " +
	"Keep summaries under 200 words and mention concrete numbers."

// Client talks to a chat completions endpoint.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	http        httputil.HTTPClient
}

// NewClient builds a narrative client. An empty apiKey is an error; callers
// should skip narrative generation instead of constructing a dead client.
func NewClient(apiKey, baseURL, model string, httpClient httputil.HTTPClient) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}
	if httpClient == nil {
		httpClient = httputil.NewStandardClient(nil)
	}
	return &Client{
		apiKey:      apiKey,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		model:       model,
		maxTokens:   400,
		temperature: 0.4,
		http:        httpClient,
	}, nil
}

// Message represents one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the wire request for the completions endpoint.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse is the wire response from the completions endpoint.
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// BuildRunPrompt renders one pipeline result as the user prompt. Exported so
// the prompt content can be inspected without a live endpoint.
func BuildRunPrompt(result *pipeline.Result, flags []pipeline.StalledProgressFlag) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarise this assessment processing run for a programme manager.\n\n")
	fmt.Fprintf(&b, "Learners assessed: %d across %d class cohorts.\n", result.Learners, result.Cohorts)

	for _, s := range result.Summaries {
		fmt.Fprintf(&b, "- %s cohort %s: %d learners in %d groups, mean %.1f letters correct (median %.1f, range %d-%d)\n",
			s.School, s.ClassCohort, s.Learners, s.Groups, s.MeanLetters, s.MedianLetters, s.MinLetters, s.MaxLetters)
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintf(&b, "\nData warnings:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	if len(flags) > 0 {
		fmt.Fprintf(&b, "\nTeaching concerns (several groups at the same point in the letter sequence):\n")
		for _, f := range flags {
			fmt.Fprintf(&b, "- %s, %s: %d groups all at letter position %d\n",
				f.School, f.TA, len(f.Groups), f.ProgressIndex+1)
		}
	}
	return b.String()
}

// SummarizeRun asks the model for a narrative of one run.
func (c *Client) SummarizeRun(result *pipeline.Result, flags []pipeline.StalledProgressFlag) (string, error) {
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: BuildRunPrompt(result, flags)},
	}
	return c.complete(messages)
}

func (c *Client) complete(messages []Message) (string, error) {
	request := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/chat/completions", bytes.NewBuffer(requestData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %v", err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("API error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
