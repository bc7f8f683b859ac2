package docgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultAPIURL = "https://openrouter.ai/api/v1/chat/completions"

// Kind selects the document a prompt produces.
type Kind string

const (
	KindConcept      Kind = "concept"
	KindRequirements Kind = "requirements"
	KindDesign       Kind = "design"
	KindTesting      Kind = "testing"
)

var systemPrompts = map[Kind]string{
	KindConcept: "You are a technical project planning assistant. Turn the following app " +
		"description into a detailed concept covering requirements, user roles, feature " +
		"scope, recommended languages and libraries, data models, and a rough project " +
		"plan. Use Markdown with headings and lists.",
	KindRequirements: "You are a requirements engineer. Turn the following app idea into a " +
		"detailed list of requirements: clear user stories, edge cases, acceptance " +
		"criteria, and technical constraints. Use Markdown with headings, lists, and " +
		"tables where useful.",
	KindDesign: "You are a software architect. Produce an architectural design for the " +
		"following idea: the main components, their interfaces, data flows, and storage " +
		"structures. Use Markdown, with ASCII or PlantUML diagrams where helpful.",
	KindTesting: "You are a QA engineer. Produce a test plan for the following app: unit, " +
		"integration, performance, security, and usability tests, with example test data " +
		"and expected results. Use Markdown.",
}

// Client generates planning documents through the OpenRouter chat
// completions API. Failures are ordinary errors; callers are expected to
// degrade gracefully, not abort.
type Client struct {
	apiKey string
	model  string
	apiURL string
	http   *http.Client
}

func New(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		apiURL: defaultAPIURL,
		http:   &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate produces one document of the given kind for an idea.
func (c *Client) Generate(ctx context.Context, idea string, kind Kind) (string, error) {
	system, ok := systemPrompts[kind]
	if !ok {
		system = systemPrompts[KindConcept]
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: idea},
		},
		MaxTokens:   1024,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s document: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to generate %s document: status %d", kind, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to parse %s response: %w", kind, err)
	}

	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty %s response from model", kind)
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
