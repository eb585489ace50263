// Package ai wraps the Anthropic API for the two text-understanding
// collaborators the planner consumes: extracting task drafts from free-form
// syllabus text and generating break-time suggestions. Failures here never
// abort scheduling; callers fall back to stored tasks or generic text.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/playblocks/playblocks-api-go/pkg/models"
)

const defaultModel = "claude-sonnet-4-0"

// TaskDraft is one task as extracted from free text, before normalization.
type TaskDraft struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Duration    int    `json:"duration"`
	Deadline    string `json:"deadline,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// ToTask converts a draft into a planner task with permissive defaults.
func (d TaskDraft) ToTask(id string) models.Task {
	task := models.Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Duration:    d.Duration,
		Priority:    d.Priority,
	}
	if task.Duration <= 0 {
		task.Duration = 60
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}
	if d.Deadline != "" {
		if t, err := time.Parse(time.RFC3339, d.Deadline); err == nil {
			task.Deadline = &t
		}
	}
	return task
}

// FallbackSuggestions is used for break blocks whenever generation fails or
// is unavailable.
var FallbackSuggestions = []string{
	"Stand up and stretch",
	"Get a glass of water",
	"Take a short walk",
	"Rest your eyes away from the screen",
}

// Client wraps the Anthropic SDK.
type Client struct {
	inner anthropic.Client
	model anthropic.Model
}

// NewClient creates an Anthropic client. apiKey defaults to the
// ANTHROPIC_API_KEY env var, model to Claude Sonnet.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	m := anthropic.Model(defaultModel)
	if model != "" {
		m = anthropic.Model(model)
	}

	return &Client{
		inner: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model: m,
	}, nil
}

const extractPrompt = `You are a task extraction assistant. Given a course syllabus or project description, extract all actionable tasks with their details.

Return JSON with this exact structure:
{
  "tasks": [
    {
      "title": "Task name",
      "description": "Brief description",
      "duration": 60,
      "deadline": "2025-12-31T23:59:59Z",
      "priority": "high"
    }
  ]
}

Rules:
- duration is in minutes (estimate from task complexity)
- deadline is ISO 8601 when mentioned, otherwise omit it
- priority is "high", "medium", or "low"
- extract assignments, projects, readings, exams, labs, etc.
- be specific but concise in titles

Return ONLY the JSON object. No markdown fences, no commentary.

Syllabus:
`

// ExtractTasks asks the model to turn free-form syllabus text into task drafts.
func (c *Client) ExtractTasks(ctx context.Context, text string) ([]TaskDraft, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty input text")
	}

	reply, err := c.complete(ctx, extractPrompt+text, 4096)
	if err != nil {
		return nil, err
	}
	return parseTaskResponse(reply)
}

const suggestPrompt = `You are a study-break assistant. Suggest 3 short, concrete break activities for a %d-minute break between working on "%s" and "%s".

Return JSON with this exact structure:
{"suggestions": ["...", "...", "..."]}

Return ONLY the JSON object. No markdown fences, no commentary.`

// SuggestBreaks asks the model for break activities between two tasks.
func (c *Client) SuggestBreaks(ctx context.Context, beforeTask, afterTask string, minutes int) ([]string, error) {
	if beforeTask == "" {
		beforeTask = "your work"
	}
	if afterTask == "" {
		afterTask = "your next task"
	}

	reply, err := c.complete(ctx, fmt.Sprintf(suggestPrompt, minutes, beforeTask, afterTask), 512)
	if err != nil {
		return nil, err
	}
	return parseSuggestionResponse(reply)
}

func (c *Client) complete(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}

func parseTaskResponse(reply string) ([]TaskDraft, error) {
	var payload struct {
		Tasks []TaskDraft `json:"tasks"`
	}
	cleaned := stripJSONFences(reply)
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}
	return payload.Tasks, nil
}

func parseSuggestionResponse(reply string) ([]string, error) {
	var payload struct {
		Suggestions []string `json:"suggestions"`
	}
	cleaned := stripJSONFences(reply)
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse suggestion response: %w", err)
	}
	return payload.Suggestions, nil
}

// stripJSONFences removes markdown code fences the model sometimes wraps
// around its JSON despite instructions.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
