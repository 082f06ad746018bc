// Package search ranks free-text matches across tasks, projects, and users.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domsearch "github.com/kailas-cloud/promemo/internal/domain/search"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

// flatRelevance is assigned to every candidate of a filter-only advanced
// search so the ordering stays total.
const flatRelevance = 50

// Service runs search queries against the stored collections.
type Service struct {
	tasks            TaskReader
	projects         ProjectReader
	users            UserReader
	defaultLimit     int
	maxLimit         int
	suggestionsLimit int
}

// New creates a search service.
func New(tasks TaskReader, projects ProjectReader, users UserReader, defaultLimit, maxLimit, suggestionsLimit int) *Service {
	return &Service{
		tasks:            tasks,
		projects:         projects,
		users:            users,
		defaultLimit:     defaultLimit,
		maxLimit:         maxLimit,
		suggestionsLimit: suggestionsLimit,
	}
}

// Query narrows and sizes a search.
type Query struct {
	Text  string
	Type  string
	Limit int
}

// Search scores candidates of the requested types visible to the requester
// and returns them ranked by relevance descending. An empty query yields an
// empty result set. An unknown type filter is ignored.
func (s *Service) Search(ctx context.Context, requester domuser.User, q Query) ([]domsearch.Result, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return []domsearch.Result{}, nil
	}
	limit := s.clampLimit(q.Limit)

	wantTask, wantProject, wantUser := typeFilter(q.Type)

	var results []domsearch.Result
	if wantTask {
		tasks, projects, err := s.visibleTasks(ctx, requester)
		if err != nil {
			return nil, err
		}
		for i := range tasks {
			t := &tasks[i]
			if !domsearch.Matches(text, t.Title, t.Description, strings.Join(t.Tags, " ")) {
				continue
			}
			score := domsearch.Score(text, t.Title, t.Description)
			results = append(results, domsearch.NewResult(
				domsearch.TypeTask, t.ID, t.Title, t.Description, score, taskMetadata(t, projects)))
		}
	}
	if wantProject {
		projects, err := s.visibleProjects(ctx, requester)
		if err != nil {
			return nil, err
		}
		for i := range projects {
			p := &projects[i]
			if !domsearch.Matches(text, p.Name, p.Description, strings.Join(p.Tags, " ")) {
				continue
			}
			score := domsearch.Score(text, p.Name, p.Description)
			results = append(results, domsearch.NewResult(
				domsearch.TypeProject, p.ID, p.Name, p.Description, score,
				map[string]any{"status": p.Status, "ownerId": p.OwnerID}))
		}
	}
	if wantUser {
		users, err := s.users.List(ctx, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		for i := range users {
			u := &users[i]
			if !domsearch.Matches(text, u.Name, u.Email) {
				continue
			}
			score := domsearch.Score(text, u.Name, u.Email)
			results = append(results, domsearch.NewResult(
				domsearch.TypeUser, u.ID, u.Name, "", score,
				map[string]any{"email": u.Email, "role": u.Role}))
		}
	}

	return domsearch.Rank(results, limit), nil
}

// Suggestions returns deduplicated matching titles, names, and tags in
// retrieval order, for autocomplete.
func (s *Service) Suggestions(ctx context.Context, requester domuser.User, text string, limit int) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = s.suggestionsLimit
	}

	seen := map[string]bool{}
	out := []string{}
	add := func(candidates ...string) {
		for _, c := range candidates {
			if len(out) >= limit {
				return
			}
			if c == "" || seen[c] {
				continue
			}
			if !strings.Contains(strings.ToLower(c), strings.ToLower(text)) {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}

	tasks, _, err := s.visibleTasks(ctx, requester)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		add(tasks[i].Title)
		add(tasks[i].Tags...)
	}

	projects, err := s.visibleProjects(ctx, requester)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		add(projects[i].Name)
		add(projects[i].Tags...)
	}

	users, err := s.users.List(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		add(users[i].Name)
	}

	return out, nil
}

// AdvancedQuery adds exact-match pre-filters to a task search.
type AdvancedQuery struct {
	Text      string
	Status    string
	Priority  string
	Tag       string
	DueAfter  *time.Time
	DueBefore *time.Time
	Limit     int
}

// Advanced pre-filters visible tasks on exact fields, then scores any
// remaining query text. Without query text every survivor gets a flat
// relevance so retrieval order decides.
func (s *Service) Advanced(ctx context.Context, requester domuser.User, q AdvancedQuery) ([]domsearch.Result, error) {
	text := strings.TrimSpace(q.Text)
	limit := s.clampLimit(q.Limit)

	tasks, projects, err := s.visibleTasks(ctx, requester)
	if err != nil {
		return nil, err
	}

	var results []domsearch.Result
	for i := range tasks {
		t := &tasks[i]
		if q.Status != "" && string(t.Status) != q.Status {
			continue
		}
		if q.Priority != "" && string(t.Priority) != q.Priority {
			continue
		}
		if q.Tag != "" && !hasTag(t.Tags, q.Tag) {
			continue
		}
		if q.DueAfter != nil && (t.DueDate == nil || t.DueDate.Before(*q.DueAfter)) {
			continue
		}
		if q.DueBefore != nil && (t.DueDate == nil || t.DueDate.After(*q.DueBefore)) {
			continue
		}

		score := flatRelevance
		if text != "" {
			if !domsearch.Matches(text, t.Title, t.Description, strings.Join(t.Tags, " ")) {
				continue
			}
			score = domsearch.Score(text, t.Title, t.Description)
		}
		results = append(results, domsearch.NewResult(
			domsearch.TypeTask, t.ID, t.Title, t.Description, score, taskMetadata(t, projects)))
	}

	return domsearch.Rank(results, limit), nil
}

// visibleTasks returns the requester's visible tasks plus an id-to-name map
// of their projects for metadata resolution.
func (s *Service) visibleTasks(ctx context.Context, requester domuser.User) ([]domtask.Task, map[string]string, error) {
	projects, err := s.visibleProjects(ctx, requester)
	if err != nil {
		return nil, nil, err
	}
	member := map[string]string{}
	for i := range projects {
		member[projects[i].ID] = projects[i].Name
	}

	all, err := s.tasks.List(ctx, 0, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("list tasks: %w", err)
	}
	if requester.IsAdmin() {
		return all, member, nil
	}

	visible := make([]domtask.Task, 0, len(all))
	for i := range all {
		if _, ok := member[all[i].ProjectID]; ok || all[i].VisibleTo(requester.ID) {
			visible = append(visible, all[i])
		}
	}
	return visible, member, nil
}

func (s *Service) visibleProjects(ctx context.Context, requester domuser.User) ([]domproj.Project, error) {
	all, err := s.projects.List(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if requester.IsAdmin() {
		return all, nil
	}
	visible := make([]domproj.Project, 0, len(all))
	for i := range all {
		if all[i].HasMember(requester.ID) {
			visible = append(visible, all[i])
		}
	}
	return visible, nil
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

// typeFilter maps a type parameter to the entity toggles. Unknown values
// select everything.
func typeFilter(t string) (task, project, user bool) {
	switch domsearch.EntityType(t) {
	case domsearch.TypeTask:
		return true, false, false
	case domsearch.TypeProject:
		return false, true, false
	case domsearch.TypeUser:
		return false, false, true
	default:
		return true, true, true
	}
}

func taskMetadata(t *domtask.Task, projectNames map[string]string) map[string]any {
	return map[string]any{
		"projectId":   t.ProjectID,
		"projectName": projectNames[t.ProjectID],
		"status":      t.Status,
		"priority":    t.Priority,
	}
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}
