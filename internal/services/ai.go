package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// TaskGenerator drafts tasks from free text
type TaskGenerator interface {
	GenerateTasksFromText(ctx context.Context, cardName, text string) ([]GeneratedTask, error)
}

type AIService struct {
	client *openai.Client
}

// GeneratedTask is a draft; nothing is stored until the client creates it
type GeneratedTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority,omitempty"`
	Deadline    *time.Time `json:"deadline"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// GenerateTasksFromText asks the model to split text into tasks for a card
func (s *AIService) GenerateTasksFromText(ctx context.Context, cardName, text string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	currentTime := time.Now().Format("2006-01-02 15:04:05")
	prompt := fmt.Sprintf(`You extract actionable tasks for a kanban card.

Current time: %s
Card: %s

Text:
%s

Return a JSON array of tasks in this shape:
[
  {
    "title": "short task title",
    "description": "details of the task",
    "priority": "one of low, medium, high, critical, or empty when unclear",
    "deadline": "ISO8601 timestamp such as 2025-10-28T23:59:59Z, or null when no deadline is stated"
  }
]

Rules:
- Return [] when the text contains no tasks
- Convert relative dates such as "tomorrow" or "next week" into concrete timestamps
- Return JSON only, without any explanation`, currentTime, cardName, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}

// stripCodeFence removes a ```json fence the model sometimes wraps around its answer
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
