// Package analytics aggregates task and project counts into a dashboard view.
package analytics

import (
	"context"
	"fmt"
	"time"

	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

// Service computes dashboard aggregates.
type Service struct {
	tasks    TaskReader
	projects ProjectReader
	now      func() time.Time
}

// New creates an analytics service.
func New(tasks TaskReader, projects ProjectReader) *Service {
	return &Service{tasks: tasks, projects: projects, now: time.Now}
}

// ProjectStats is one project's rollup.
type ProjectStats struct {
	ProjectID      string  `json:"projectId"`
	ProjectName    string  `json:"projectName"`
	TaskCount      int     `json:"taskCount"`
	DoneCount      int     `json:"doneCount"`
	CompletionRate float64 `json:"completionRate"`
}

// DashboardData is the aggregate view over the requester's visible entities.
type DashboardData struct {
	TotalTasks     int            `json:"totalTasks"`
	TotalProjects  int            `json:"totalProjects"`
	ByStatus       map[string]int `json:"byStatus"`
	ByPriority     map[string]int `json:"byPriority"`
	OverdueCount   int            `json:"overdueCount"`
	CompletionRate float64        `json:"completionRate"`
	Projects       []ProjectStats `json:"projects"`
}

// Dashboard aggregates over the tasks and projects the requester can see.
func (s *Service) Dashboard(ctx context.Context, requester domuser.User) (DashboardData, error) {
	projects, err := s.projects.List(ctx, 0, 0)
	if err != nil {
		return DashboardData{}, fmt.Errorf("list projects: %w", err)
	}
	visible := make([]domproj.Project, 0, len(projects))
	member := map[string]bool{}
	for i := range projects {
		if requester.IsAdmin() || projects[i].HasMember(requester.ID) {
			visible = append(visible, projects[i])
			member[projects[i].ID] = true
		}
	}

	all, err := s.tasks.List(ctx, 0, 0)
	if err != nil {
		return DashboardData{}, fmt.Errorf("list tasks: %w", err)
	}

	d := DashboardData{
		TotalProjects: len(visible),
		ByStatus:      map[string]int{},
		ByPriority:    map[string]int{},
	}
	perProject := map[string]*ProjectStats{}
	for i := range visible {
		perProject[visible[i].ID] = &ProjectStats{
			ProjectID:   visible[i].ID,
			ProjectName: visible[i].Name,
		}
	}

	nowTime := s.now()
	done := 0
	for i := range all {
		t := &all[i]
		if !requester.IsAdmin() && !member[t.ProjectID] && !t.VisibleTo(requester.ID) {
			continue
		}
		d.TotalTasks++
		d.ByStatus[string(t.Status)]++
		d.ByPriority[string(t.Priority)]++
		if t.IsOverdue(nowTime) {
			d.OverdueCount++
		}
		if t.Status == domtask.StatusDone {
			done++
		}
		if ps, ok := perProject[t.ProjectID]; ok {
			ps.TaskCount++
			if t.Status == domtask.StatusDone {
				ps.DoneCount++
			}
		}
	}

	if d.TotalTasks > 0 {
		d.CompletionRate = float64(done) / float64(d.TotalTasks)
	}
	d.Projects = make([]ProjectStats, 0, len(visible))
	for i := range visible {
		ps := perProject[visible[i].ID]
		if ps.TaskCount > 0 {
			ps.CompletionRate = float64(ps.DoneCount) / float64(ps.TaskCount)
		}
		d.Projects = append(d.Projects, *ps)
	}
	return d, nil
}
