// Package export converts stored entities to and from interchange formats.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/promemo/internal/domain"
	domexp "github.com/kailas-cloud/promemo/internal/domain/export"
	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
	usetask "github.com/kailas-cloud/promemo/internal/usecase/task"
)

// Service builds export bundles and ingests import payloads.
type Service struct {
	tasks            TaskReader
	projects         ProjectReader
	creator          TaskCreator
	maxImportRecords int
	logger           *zap.Logger
}

// New creates an export service.
func New(tasks TaskReader, projects ProjectReader, creator TaskCreator, maxImportRecords int, logger *zap.Logger) *Service {
	return &Service{
		tasks:            tasks,
		projects:         projects,
		creator:          creator,
		maxImportRecords: maxImportRecords,
		logger:           logger,
	}
}

// Filter narrows an export to one project or status.
type Filter struct {
	ProjectID string
	Status    string
}

// ExportTasks bundles the requester's visible tasks. Ordering follows the
// store's retrieval order.
func (s *Service) ExportTasks(ctx context.Context, requester domuser.User, f Filter, format domexp.Format) (domexp.Bundle, error) {
	if !domexp.ValidFormat(format) {
		return domexp.Bundle{}, fmt.Errorf("unknown format %q: %w", format, domain.ErrValidation)
	}

	tasks, names, err := s.fetchTasks(ctx, requester, f)
	if err != nil {
		return domexp.Bundle{}, err
	}

	records := make([]domexp.Record, 0, len(tasks))
	for i := range tasks {
		records = append(records, taskRecord(&tasks[i], names[tasks[i].ProjectID]))
	}
	return domexp.NewBundle(records, format), nil
}

// ExportProjects bundles the requester's visible projects.
func (s *Service) ExportProjects(ctx context.Context, requester domuser.User, format domexp.Format) (domexp.Bundle, error) {
	if !domexp.ValidFormat(format) {
		return domexp.Bundle{}, fmt.Errorf("unknown format %q: %w", format, domain.ErrValidation)
	}

	projects, err := s.visibleProjects(ctx, requester)
	if err != nil {
		return domexp.Bundle{}, err
	}

	records := make([]domexp.Record, 0, len(projects))
	for i := range projects {
		records = append(records, projectRecord(&projects[i]))
	}
	return domexp.NewBundle(records, format), nil
}

// ExportAnalytics bundles per-project task rollups.
func (s *Service) ExportAnalytics(ctx context.Context, requester domuser.User, format domexp.Format) (domexp.Bundle, error) {
	if !domexp.ValidFormat(format) {
		return domexp.Bundle{}, fmt.Errorf("unknown format %q: %w", format, domain.ErrValidation)
	}

	projects, err := s.visibleProjects(ctx, requester)
	if err != nil {
		return domexp.Bundle{}, err
	}

	records := make([]domexp.Record, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		tasks, err := s.tasks.ListByProject(ctx, p.ID, 0, 0)
		if err != nil {
			return domexp.Bundle{}, fmt.Errorf("list project tasks: %w", err)
		}
		done := 0
		for j := range tasks {
			if tasks[j].Status == domtask.StatusDone {
				done++
			}
		}
		records = append(records, domexp.Record{
			Keys: []string{"projectId", "projectName", "status", "taskCount", "doneCount"},
			Values: map[string]any{
				"projectId":   p.ID,
				"projectName": p.Name,
				"status":      p.Status,
				"taskCount":   len(tasks),
				"doneCount":   done,
			},
		})
	}
	return domexp.NewBundle(records, format), nil
}

// ExportAll bundles visible projects followed by visible tasks.
func (s *Service) ExportAll(ctx context.Context, requester domuser.User, format domexp.Format) (domexp.Bundle, error) {
	projects, err := s.ExportProjects(ctx, requester, format)
	if err != nil {
		return domexp.Bundle{}, err
	}
	tasks, err := s.ExportTasks(ctx, requester, Filter{}, format)
	if err != nil {
		return domexp.Bundle{}, err
	}
	return domexp.NewBundle(append(projects.Data, tasks.Data...), format), nil
}

// excelPlaceholder is returned for the excel format, which is accepted but
// not produced.
const excelPlaceholder = "excel export is not implemented yet; request json or csv"

// Render serializes a bundle to its response body and content type.
func (s *Service) Render(b domexp.Bundle) ([]byte, string, error) {
	switch b.Format {
	case domexp.FormatJSON:
		rows := make([]map[string]any, 0, len(b.Data))
		for _, r := range b.Data {
			rows = append(rows, r.Values)
		}
		body, err := json.Marshal(map[string]any{"count": b.Count, "data": rows})
		if err != nil {
			return nil, "", fmt.Errorf("marshal bundle: %w", err)
		}
		return body, "application/json", nil
	case domexp.FormatCSV:
		return []byte(renderCSV(b.Data)), "text/csv", nil
	case domexp.FormatExcel:
		return []byte(excelPlaceholder), "text/plain", nil
	default:
		return nil, "", fmt.Errorf("unknown format %q: %w", b.Format, domain.ErrValidation)
	}
}

// ImportResult counts accepted and rejected records.
type ImportResult struct {
	Success  int `json:"success"`
	Failures int `json:"failures"`
}

// ImportTasks parses a CSV or JSON payload and creates one task per record
// in the target project. Invalid records are counted, never abort the batch.
// The creator is always the requester.
func (s *Service) ImportTasks(
	ctx context.Context, requester domuser.User, projectID string, payload []byte, contentType string,
) (ImportResult, error) {
	if projectID == "" {
		return ImportResult{}, fmt.Errorf("project_id is required: %w", domain.ErrValidation)
	}

	var rows []map[string]string
	var err error
	if strings.Contains(contentType, "json") {
		rows, err = parseJSONRows(payload)
	} else {
		rows, err = parseCSVRows(payload)
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse import payload: %w", err)
	}
	if len(rows) > s.maxImportRecords {
		return ImportResult{}, fmt.Errorf("too many records (%d > %d): %w", len(rows), s.maxImportRecords, domain.ErrValidation)
	}

	var res ImportResult
	for _, row := range rows {
		in := usetask.CreateInput{
			ProjectID:   projectID,
			Title:       row["title"],
			Description: row["description"],
			Priority:    domtask.Priority(row["priority"]),
			AssigneeID:  row["assigneeId"],
		}
		if v := row["tags"]; v != "" {
			in.Tags = strings.Split(v, ";")
		}
		if v := row["dueDate"]; v != "" {
			if due, err := time.Parse(time.RFC3339, v); err == nil {
				in.DueDate = &due
			}
		}
		if _, err := s.creator.Create(ctx, requester, in); err != nil {
			s.logger.Warn("import record rejected", zap.Error(err))
			res.Failures++
			continue
		}
		res.Success++
	}
	return res, nil
}

func (s *Service) fetchTasks(
	ctx context.Context, requester domuser.User, f Filter,
) ([]domtask.Task, map[string]string, error) {
	projects, err := s.visibleProjects(ctx, requester)
	if err != nil {
		return nil, nil, err
	}
	names := map[string]string{}
	for i := range projects {
		names[projects[i].ID] = projects[i].Name
	}

	var all []domtask.Task
	if f.ProjectID != "" {
		all, err = s.tasks.ListByProject(ctx, f.ProjectID, 0, 0)
	} else {
		all, err = s.tasks.List(ctx, 0, 0)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("list tasks: %w", err)
	}

	out := make([]domtask.Task, 0, len(all))
	for i := range all {
		t := &all[i]
		if f.Status != "" && string(t.Status) != f.Status {
			continue
		}
		if _, member := names[t.ProjectID]; !member && !requester.IsAdmin() && !t.VisibleTo(requester.ID) {
			continue
		}
		out = append(out, *t)
	}
	return out, names, nil
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

func taskRecord(t *domtask.Task, projectName string) domexp.Record {
	due := ""
	if t.DueDate != nil {
		due = t.DueDate.Format(time.RFC3339)
	}
	return domexp.Record{
		Keys: []string{
			"id", "title", "description", "projectName", "status",
			"priority", "assigneeId", "tags", "dueDate", "createdAt",
		},
		Values: map[string]any{
			"id":          t.ID,
			"title":       t.Title,
			"description": t.Description,
			"projectName": projectName,
			"status":      t.Status,
			"priority":    t.Priority,
			"assigneeId":  t.AssigneeID,
			"tags":        strings.Join(t.Tags, ";"),
			"dueDate":     due,
			"createdAt":   t.CreatedAt.Format(time.RFC3339),
		},
	}
}

func projectRecord(p *domproj.Project) domexp.Record {
	return domexp.Record{
		Keys: []string{"id", "name", "description", "ownerId", "status", "tags", "createdAt"},
		Values: map[string]any{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
			"ownerId":     p.OwnerID,
			"status":      p.Status,
			"tags":        strings.Join(p.Tags, ";"),
			"createdAt":   p.CreatedAt.Format(time.RFC3339),
		},
	}
}
