package task

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/promemo/internal/domain"
	domact "github.com/kailas-cloud/promemo/internal/domain/activity"
	domnotif "github.com/kailas-cloud/promemo/internal/domain/notification"
	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
)

func memberProject() domproj.Project {
	return domproj.Project{ID: "p1", Name: "Alpha", OwnerID: "u-member"}
}

func TestCreate_Defaults(t *testing.T) {
	repo := newMockRepo()
	rec := &mockRecorder{}
	svc := newTestService(repo, newMockProjects(memberProject()), rec, &mockNotifier{})

	created, err := svc.Create(context.Background(), member, CreateInput{
		ProjectID: "p1",
		Title:     "  Ship it  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Title != "Ship it" {
		t.Errorf("title not trimmed: %q", created.Title)
	}
	if created.Status != domtask.StatusTodo {
		t.Errorf("expected default status todo, got %s", created.Status)
	}
	if created.Priority != domtask.PriorityMedium {
		t.Errorf("expected default priority medium, got %s", created.Priority)
	}
	if created.CreatorID != member.ID {
		t.Errorf("creator must be the requester, got %s", created.CreatorID)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
	if len(rec.recorded) != 1 || rec.recorded[0].Action != domact.ActionCreated {
		t.Errorf("expected one created activity, got %+v", rec.recorded)
	}
}

func TestCreate_RequiresTitleAndProject(t *testing.T) {
	svc := newTestService(newMockRepo(), newMockProjects(memberProject()), &mockRecorder{}, &mockNotifier{})

	if _, err := svc.Create(context.Background(), member, CreateInput{ProjectID: "p1"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing title: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Create(context.Background(), member, CreateInput{Title: "x"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing project: expected ErrValidation, got %v", err)
	}
}

func TestCreate_NonMemberForbidden(t *testing.T) {
	other := domproj.Project{ID: "p2", OwnerID: "someone-else"}
	svc := newTestService(newMockRepo(), newMockProjects(other), &mockRecorder{}, &mockNotifier{})

	_, err := svc.Create(context.Background(), member, CreateInput{ProjectID: "p2", Title: "x"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestCreate_NotifiesAssignee(t *testing.T) {
	not := &mockNotifier{}
	svc := newTestService(newMockRepo(), newMockProjects(memberProject()), &mockRecorder{}, not)

	_, err := svc.Create(context.Background(), member, CreateInput{
		ProjectID:  "p1",
		Title:      "Review PR",
		AssigneeID: "u-other",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(not.notices) != 1 {
		t.Fatalf("expected one notification, got %d", len(not.notices))
	}
	if not.notices[0].userID != "u-other" || not.notices[0].kind != string(domnotif.TypeTaskAssigned) {
		t.Errorf("unexpected notification %+v", not.notices[0])
	}
}

func TestCreate_SelfAssignNoNotification(t *testing.T) {
	not := &mockNotifier{}
	svc := newTestService(newMockRepo(), newMockProjects(memberProject()), &mockRecorder{}, not)

	_, err := svc.Create(context.Background(), member, CreateInput{
		ProjectID:  "p1",
		Title:      "Solo work",
		AssigneeID: member.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(not.notices) != 0 {
		t.Errorf("self-assignment must not notify, got %+v", not.notices)
	}
}

func TestGet_Visibility(t *testing.T) {
	repo := newMockRepo(
		domtask.Task{ID: "t-mine", ProjectID: "p-other", CreatorID: member.ID},
		domtask.Task{ID: "t-member", ProjectID: "p1"},
		domtask.Task{ID: "t-hidden", ProjectID: "p-other", CreatorID: "someone"},
	)
	projects := newMockProjects(
		memberProject(),
		domproj.Project{ID: "p-other", OwnerID: "someone-else"},
	)
	svc := newTestService(repo, projects, &mockRecorder{}, &mockNotifier{})

	if _, err := svc.Get(context.Background(), member, "t-mine"); err != nil {
		t.Errorf("creator must see own task: %v", err)
	}
	if _, err := svc.Get(context.Background(), member, "t-member"); err != nil {
		t.Errorf("project member must see project task: %v", err)
	}
	if _, err := svc.Get(context.Background(), member, "t-hidden"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for foreign task, got %v", err)
	}
	if _, err := svc.Get(context.Background(), admin, "t-hidden"); err != nil {
		t.Errorf("admin must see everything: %v", err)
	}
	if _, err := svc.Get(context.Background(), member, "missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestUpdate_StatusChangeNotifiesWatchers(t *testing.T) {
	repo := newMockRepo(domtask.Task{
		ID: "t1", ProjectID: "p1", Title: "Thing",
		Status: domtask.StatusTodo, CreatorID: "u-creator", AssigneeID: "u-assignee",
	})
	projects := newMockProjects(domproj.Project{
		ID: "p1", OwnerID: "u-member", MemberIDs: []string{"u-creator", "u-assignee"},
	})
	not := &mockNotifier{}
	svc := newTestService(repo, projects, &mockRecorder{}, not)

	status := domtask.StatusDone
	_, err := svc.Update(context.Background(), member, "t1", Patch{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notified := map[string]bool{}
	for _, n := range not.notices {
		if n.kind == string(domnotif.TypeStatusChanged) {
			notified[n.userID] = true
		}
	}
	if !notified["u-creator"] || !notified["u-assignee"] {
		t.Errorf("creator and assignee must be notified, got %+v", not.notices)
	}
	if notified[member.ID] {
		t.Error("the actor must not be notified")
	}
}

func TestUpdate_InvalidStatus(t *testing.T) {
	repo := newMockRepo(domtask.Task{ID: "t1", ProjectID: "p1", Title: "x"})
	svc := newTestService(repo, newMockProjects(memberProject()), &mockRecorder{}, &mockNotifier{})

	status := domtask.Status("bogus")
	_, err := svc.Update(context.Background(), member, "t1", Patch{Status: &status})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestUpdate_MoveChecksTargetMembership(t *testing.T) {
	repo := newMockRepo(domtask.Task{ID: "t1", ProjectID: "p1", Title: "x"})
	projects := newMockProjects(
		memberProject(),
		domproj.Project{ID: "p-foreign", OwnerID: "someone-else"},
	)
	svc := newTestService(repo, projects, &mockRecorder{}, &mockNotifier{})

	target := "p-foreign"
	_, err := svc.Update(context.Background(), member, "t1", Patch{ProjectID: &target})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for foreign target project, got %v", err)
	}
}

func TestDelete_RecordsActivity(t *testing.T) {
	repo := newMockRepo(domtask.Task{ID: "t1", ProjectID: "p1", CreatorID: member.ID})
	rec := &mockRecorder{}
	svc := newTestService(repo, newMockProjects(memberProject()), rec, &mockNotifier{})

	if err := svc.Delete(context.Background(), member, "t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "t1" {
		t.Errorf("task not deleted: %+v", repo.deleted)
	}
	if len(rec.recorded) != 1 || rec.recorded[0].Action != domact.ActionDeleted {
		t.Errorf("expected deleted activity, got %+v", rec.recorded)
	}
}
