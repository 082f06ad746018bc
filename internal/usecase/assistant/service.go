// Package assistant generates project summaries and task suggestions via a
// completion backend.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/promemo/internal/domain"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
)

const (
	systemSummarize = "You summarize project status for a task tracker. Be concise and factual."
	systemSuggest   = "You propose next tasks for a project in a task tracker. Reply with a short list."

	maxPromptTasks = 50
)

// Service builds prompts from project state and delegates to a completer.
type Service struct {
	completer Completer
	tasks     TaskReader
}

// New creates an assistant service. completer may be nil when no API key is
// configured; calls then fail with ErrAssistantUnavailable.
func New(completer Completer, tasks TaskReader) *Service {
	return &Service{completer: completer, tasks: tasks}
}

// Summarize produces a natural-language status summary of a project.
func (s *Service) Summarize(ctx context.Context, projectID string) (string, error) {
	if s.completer == nil {
		return "", domain.ErrAssistantUnavailable
	}

	prompt, err := s.projectPrompt(ctx, projectID, "Summarize the current state of this project:")
	if err != nil {
		return "", err
	}
	out, err := s.completer.Complete(ctx, systemSummarize, prompt)
	if err != nil {
		return "", fmt.Errorf("complete: %w: %v", domain.ErrAssistantUnavailable, err)
	}
	return out, nil
}

// Suggest proposes follow-up tasks for a project.
func (s *Service) Suggest(ctx context.Context, projectID string) (string, error) {
	if s.completer == nil {
		return "", domain.ErrAssistantUnavailable
	}

	prompt, err := s.projectPrompt(ctx, projectID, "Suggest the next tasks for this project:")
	if err != nil {
		return "", err
	}
	out, err := s.completer.Complete(ctx, systemSuggest, prompt)
	if err != nil {
		return "", fmt.Errorf("complete: %w: %v", domain.ErrAssistantUnavailable, err)
	}
	return out, nil
}

func (s *Service) projectPrompt(ctx context.Context, projectID, lead string) (string, error) {
	tasks, err := s.tasks.ListByProject(ctx, projectID, 0, maxPromptTasks)
	if err != nil {
		return "", fmt.Errorf("list project tasks: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(lead)
	sb.WriteString("\n")
	if len(tasks) == 0 {
		sb.WriteString("(no tasks yet)\n")
	}
	for i := range tasks {
		sb.WriteString(taskLine(&tasks[i]))
	}
	return sb.String(), nil
}

func taskLine(t *domtask.Task) string {
	return fmt.Sprintf("- [%s/%s] %s\n", t.Status, t.Priority, t.Title)
}
