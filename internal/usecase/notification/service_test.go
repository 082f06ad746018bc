package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/promemo/internal/domain"
	domnotif "github.com/kailas-cloud/promemo/internal/domain/notification"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

type mockRepo struct {
	notifications map[string]domnotif.Notification
	deleteErrFor  string
	deleted       map[string]float64
}

func newMockRepo(ns ...domnotif.Notification) *mockRepo {
	m := &mockRepo{
		notifications: map[string]domnotif.Notification{},
		deleted:       map[string]float64{},
	}
	for _, n := range ns {
		m.notifications[n.ID] = n
	}
	return m
}

func (m *mockRepo) Put(_ context.Context, n *domnotif.Notification) error {
	m.notifications[n.ID] = *n
	return nil
}

func (m *mockRepo) Get(_ context.Context, id string) (domnotif.Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return domnotif.Notification{}, domain.ErrNotFound
	}
	return n, nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]domnotif.Notification, error) {
	var out []domnotif.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockRepo) DeleteOlderThan(_ context.Context, userID string, cutoffMilli float64) (int, error) {
	if userID == m.deleteErrFor {
		return 0, errors.New("store down")
	}
	m.deleted[userID] = cutoffMilli
	n := 0
	for id, notif := range m.notifications {
		if notif.UserID == userID && float64(notif.CreatedAt.UnixMilli()) < cutoffMilli {
			delete(m.notifications, id)
			n++
		}
	}
	return n, nil
}

type mockUserLister struct {
	users []domuser.User
}

func (m *mockUserLister) List(_ context.Context, _, _ int) ([]domuser.User, error) {
	return m.users, nil
}

func TestNotify_StoresNotification(t *testing.T) {
	repo := newMockRepo()
	svc := New(repo, &mockUserLister{}, zap.NewNop())

	err := svc.Notify(context.Background(), "u1", "Task assigned to you", "t1", string(domnotif.TypeTaskAssigned))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.notifications) != 1 {
		t.Fatalf("expected one stored notification, got %d", len(repo.notifications))
	}
	for _, n := range repo.notifications {
		if n.UserID != "u1" || n.EntityID != "t1" || n.Type != domnotif.TypeTaskAssigned {
			t.Errorf("unexpected notification %+v", n)
		}
		if n.ID == "" || n.CreatedAt.IsZero() {
			t.Errorf("missing id or timestamp: %+v", n)
		}
		if n.Read {
			t.Error("new notifications must start unread")
		}
	}
}

func TestMarkRead_RecipientOnly(t *testing.T) {
	repo := newMockRepo(domnotif.Notification{ID: "n1", UserID: "u1"})
	svc := New(repo, &mockUserLister{}, zap.NewNop())

	if _, err := svc.MarkRead(context.Background(), "intruder", "n1"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	n, err := svc.MarkRead(context.Background(), "u1", "n1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !n.Read {
		t.Error("notification not marked read")
	}

	// Idempotent for the recipient.
	if _, err := svc.MarkRead(context.Background(), "u1", "n1"); err != nil {
		t.Errorf("second mark must succeed, got %v", err)
	}
}

func TestMarkRead_Missing(t *testing.T) {
	svc := New(newMockRepo(), &mockUserLister{}, zap.NewNop())

	if _, err := svc.MarkRead(context.Background(), "u1", "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCleanupOlderThan_SweepsAllUsers(t *testing.T) {
	now := time.Now()
	repo := newMockRepo(
		domnotif.Notification{ID: "old1", UserID: "u1", CreatedAt: now.Add(-48 * time.Hour)},
		domnotif.Notification{ID: "fresh", UserID: "u1", CreatedAt: now},
		domnotif.Notification{ID: "old2", UserID: "u2", CreatedAt: now.Add(-72 * time.Hour)},
	)
	users := &mockUserLister{users: []domuser.User{{ID: "u1"}, {ID: "u2"}}}
	svc := New(repo, users, zap.NewNop())

	total, err := svc.CleanupOlderThan(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 removed, got %d", total)
	}
	if _, ok := repo.notifications["fresh"]; !ok {
		t.Error("fresh notification must survive the sweep")
	}
}

func TestCleanupOlderThan_ContinuesPastFailures(t *testing.T) {
	now := time.Now()
	repo := newMockRepo(
		domnotif.Notification{ID: "old1", UserID: "u1", CreatedAt: now.Add(-48 * time.Hour)},
		domnotif.Notification{ID: "old2", UserID: "u2", CreatedAt: now.Add(-48 * time.Hour)},
	)
	repo.deleteErrFor = "u1"
	users := &mockUserLister{users: []domuser.User{{ID: "u1"}, {ID: "u2"}}}
	svc := New(repo, users, zap.NewNop())

	total, err := svc.CleanupOlderThan(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("per-user failures must not abort the sweep: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 removed from the healthy user, got %d", total)
	}
}
