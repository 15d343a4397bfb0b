package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/example/weekly-planner/internal/synth"
)

const (
	defaultModel   = "gpt-4o-mini"
	requestTimeout = 60 * time.Second
	systemMessage  = "You are a helpful assistant designed to output JSON."
)

// ErrEmptyCompletion indicates the generator returned no usable content.
var ErrEmptyCompletion = errors.New("generate: completion contained no content")

// Generator proposes a candidate schedule for the given context.
type Generator interface {
	Generate(ctx context.Context, pc PromptContext) ([]synth.Event, error)
}

// Client calls an OpenAI-style chat completions endpoint and parses the JSON
// schedule out of the completion.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient builds a generator client. model falls back to a default when empty.
func NewClient(baseURL, apiKey, model string, httpClient *http.Client) *Client {
	if model == "" {
		model = defaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type scheduleItem struct {
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type schedulePayload struct {
	Schedule []scheduleItem `json:"schedule"`
}

// Generate requests a candidate schedule. Malformed completions and malformed
// timestamps are rejected here, at the boundary; constraint validation is the
// caller's job.
func (c *Client) Generate(ctx context.Context, pc PromptContext) ([]synth.Event, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: BuildPrompt(pc)},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("generate: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("generate: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generate: call completion endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generate: completion endpoint returned status %d", resp.StatusCode)
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("generate: decode completion: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, ErrEmptyCompletion
	}

	return ParseSchedule([]byte(completion.Choices[0].Message.Content))
}

// ParseSchedule decodes a {"schedule": [...]} payload into candidate events.
func ParseSchedule(payload []byte) ([]synth.Event, error) {
	var parsed schedulePayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("generate: decode schedule payload: %w", err)
	}

	events := make([]synth.Event, 0, len(parsed.Schedule))
	for i, item := range parsed.Schedule {
		start, err := time.Parse(time.RFC3339, item.StartTime)
		if err != nil {
			return nil, fmt.Errorf("generate: schedule item %d: malformed startTime %q: %w", i, item.StartTime, err)
		}
		end, err := time.Parse(time.RFC3339, item.EndTime)
		if err != nil {
			return nil, fmt.Errorf("generate: schedule item %d: malformed endTime %q: %w", i, item.EndTime, err)
		}
		events = append(events, synth.Event{Name: item.Name, Start: start, End: end})
	}
	return events, nil
}
