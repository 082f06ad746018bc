package search

import (
	"context"
	"testing"

	domproj "github.com/kailas-cloud/promemo/internal/domain/project"
	domsearch "github.com/kailas-cloud/promemo/internal/domain/search"
	domtask "github.com/kailas-cloud/promemo/internal/domain/task"
	domuser "github.com/kailas-cloud/promemo/internal/domain/user"
)

func TestSearch_EmptyQueryReturnsEmpty(t *testing.T) {
	svc := newTestService(
		[]domtask.Task{{ID: "t1", Title: "anything"}},
		nil, nil,
	)

	results, err := svc.Search(context.Background(), admin, Query{Text: "   "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result set, got %d", len(results))
	}
}

func TestSearch_RanksExactAboveContains(t *testing.T) {
	svc := newTestService(
		[]domtask.Task{
			{ID: "t1", ProjectID: "p1", Title: "Build dashboard"},
			{ID: "t2", ProjectID: "p1", Title: "dashboard"},
			{ID: "t3", ProjectID: "p1", Title: "Unrelated", Description: "dashboard widget"},
		},
		[]domproj.Project{{ID: "p1", Name: "Infra", OwnerID: "admin-1"}},
		nil,
	)

	results, err := svc.Search(context.Background(), admin, Query{Text: "dashboard", Type: "task"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	want := []string{"t2", "t1", "t3"}
	for i, id := range want {
		if results[i].ID != id {
			t.Errorf("position %d: expected %s, got %s (relevance %d)", i, id, results[i].ID, results[i].Relevance)
		}
	}
}

func TestSearch_UnknownTypeMeansNoFilter(t *testing.T) {
	svc := newTestService(
		[]domtask.Task{{ID: "t1", ProjectID: "p1", Title: "alpha task"}},
		[]domproj.Project{{ID: "p1", Name: "alpha project", OwnerID: "admin-1"}},
		[]domuser.User{{ID: "u1", Name: "alpha person"}},
	)

	results, err := svc.Search(context.Background(), admin, Query{Text: "alpha", Type: "bogus"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[domsearch.EntityType]bool{}
	for _, r := range results {
		seen[r.Type] = true
	}
	for _, et := range []domsearch.EntityType{domsearch.TypeTask, domsearch.TypeProject, domsearch.TypeUser} {
		if !seen[et] {
			t.Errorf("unknown type filter must include %s results", et)
		}
	}
}

func TestSearch_VisibilityRestrictsTasks(t *testing.T) {
	member := domuser.User{ID: "u-member", Role: domuser.RoleMember}
	svc := newTestService(
		[]domtask.Task{
			{ID: "t-mine", ProjectID: "p-mine", Title: "secret plan"},
			{ID: "t-other", ProjectID: "p-other", Title: "secret plan"},
		},
		[]domproj.Project{
			{ID: "p-mine", Name: "Mine", OwnerID: "u-member"},
			{ID: "p-other", Name: "Other", OwnerID: "someone-else"},
		},
		nil,
	)

	results, err := svc.Search(context.Background(), member, Query{Text: "secret", Type: "task"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "t-mine" {
		t.Errorf("expected only the member's task, got %+v", results)
	}
}

func TestSearch_LimitClamped(t *testing.T) {
	tasks := make([]domtask.Task, 0, 150)
	for i := 0; i < 150; i++ {
		tasks = append(tasks, domtask.Task{ID: "t", ProjectID: "p1", Title: "match me"})
	}
	svc := newTestService(tasks, []domproj.Project{{ID: "p1", OwnerID: "admin-1"}}, nil)

	results, err := svc.Search(context.Background(), admin, Query{Text: "match", Type: "task", Limit: 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 100 {
		t.Errorf("expected limit clamped to max 100, got %d", len(results))
	}
}

func TestSuggestions_DedupAndLimit(t *testing.T) {
	svc := newTestService(
		[]domtask.Task{
			{ID: "t1", ProjectID: "p1", Title: "Deploy service", Tags: []string{"deploy"}},
			{ID: "t2", ProjectID: "p1", Title: "Deploy service"},
		},
		[]domproj.Project{{ID: "p1", Name: "Deployment", OwnerID: "admin-1"}},
		nil,
	)

	got, err := svc.Suggestions(context.Background(), admin, "deploy", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[string]bool{}
	for _, s := range got {
		if seen[s] {
			t.Errorf("duplicate suggestion %q", s)
		}
		seen[s] = true
	}
	if !seen["Deploy service"] || !seen["deploy"] || !seen["Deployment"] {
		t.Errorf("missing expected suggestions, got %v", got)
	}
}

func TestSuggestions_EmptyQuery(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	got, err := svc.Suggestions(context.Background(), admin, "", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no suggestions for empty query, got %v", got)
	}
}

func TestAdvanced_FlatRelevanceWithoutQuery(t *testing.T) {
	svc := newTestService(
		[]domtask.Task{
			{ID: "t1", ProjectID: "p1", Title: "A", Status: domtask.StatusTodo},
			{ID: "t2", ProjectID: "p1", Title: "B", Status: domtask.StatusDone},
			{ID: "t3", ProjectID: "p1", Title: "C", Status: domtask.StatusTodo},
		},
		[]domproj.Project{{ID: "p1", OwnerID: "admin-1"}},
		nil,
	)

	results, err := svc.Advanced(context.Background(), admin, AdvancedQuery{Status: "todo"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 pre-filtered results, got %d", len(results))
	}
	for _, r := range results {
		if r.Relevance != flatRelevance {
			t.Errorf("expected flat relevance %d, got %d", flatRelevance, r.Relevance)
		}
	}
	// Stable by retrieval order.
	if results[0].ID != "t1" || results[1].ID != "t3" {
		t.Errorf("expected retrieval order preserved, got %s then %s", results[0].ID, results[1].ID)
	}
}

func TestAdvanced_FiltersCombineWithScoring(t *testing.T) {
	svc := newTestService(
		[]domtask.Task{
			{ID: "t1", ProjectID: "p1", Title: "fix bug", Priority: domtask.PriorityHigh},
			{ID: "t2", ProjectID: "p1", Title: "fix bug", Priority: domtask.PriorityLow},
			{ID: "t3", ProjectID: "p1", Title: "other", Priority: domtask.PriorityHigh},
		},
		[]domproj.Project{{ID: "p1", OwnerID: "admin-1"}},
		nil,
	)

	results, err := svc.Advanced(context.Background(), admin, AdvancedQuery{Text: "fix", Priority: "high"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "t1" {
		t.Errorf("expected only t1, got %+v", results)
	}
}
