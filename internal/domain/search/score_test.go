package search

import "testing"

func TestScore_ExactTitleBeatsEverything(t *testing.T) {
	exact := Score("dashboard", "dashboard", "")
	prefix := Score("dashboard", "dashboard builder", "")
	contains := Score("dashboard", "Build dashboard", "")

	if exact <= prefix || exact <= contains {
		t.Errorf("exact %d must outrank prefix %d and contains %d", exact, prefix, contains)
	}
	if exact < 100 {
		t.Errorf("exact title match must score at least 100, got %d", exact)
	}
}

func TestScore_TokenBonusAdditivity(t *testing.T) {
	// Two of three tokens hit the title: contains 60 + 10 + 10.
	got := Score("fix login bug", "Fix login page", "")
	if got < 80 {
		t.Errorf("expected score >= 80, got %d", got)
	}
}

func TestScore_DescriptionOnlyMatch(t *testing.T) {
	got := Score("dashboard", "Unrelated", "dashboard widget")
	if got < 30 {
		t.Errorf("description containment must contribute at least 30, got %d", got)
	}
	if got >= 60 {
		t.Errorf("description-only match must stay below any title match, got %d", got)
	}
}

func TestScore_CaseInsensitive(t *testing.T) {
	if Score("REPORT", "report", "") != Score("report", "REPORT", "") {
		t.Error("scoring must be case-insensitive")
	}
}

func TestScore_EmptyQuery(t *testing.T) {
	if got := Score("   ", "anything", "anything"); got != 0 {
		t.Errorf("blank query must score 0, got %d", got)
	}
}

func TestMatches(t *testing.T) {
	if !Matches("dash", "Build Dashboard", "") {
		t.Error("expected substring match on title")
	}
	if !Matches("widget", "Unrelated", "a widget here") {
		t.Error("expected substring match on second field")
	}
	if Matches("zzz", "Build Dashboard", "a widget here") {
		t.Error("unexpected match")
	}
	if Matches("", "anything") {
		t.Error("empty query must not match")
	}
}

func TestRank_OrderAndTruncation(t *testing.T) {
	results := []Result{
		{ID: "build", Relevance: Score("dashboard", "Build dashboard", "")},
		{ID: "exact", Relevance: Score("dashboard", "dashboard", "")},
		{ID: "desc", Relevance: Score("dashboard", "Unrelated", "dashboard widget")},
	}

	ranked := Rank(results, 0)
	want := []string{"exact", "build", "desc"}
	for i, id := range want {
		if ranked[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, ranked[i].ID)
		}
	}

	if got := Rank(ranked, 2); len(got) != 2 {
		t.Errorf("expected 2 results after truncation, got %d", len(got))
	}
}

func TestRank_StableOnTies(t *testing.T) {
	results := []Result{
		{ID: "first", Relevance: 50},
		{ID: "second", Relevance: 50},
		{ID: "third", Relevance: 50},
	}
	ranked := Rank(results, 0)
	for i, id := range []string{"first", "second", "third"} {
		if ranked[i].ID != id {
			t.Fatalf("tie order not preserved: position %d got %s", i, ranked[i].ID)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("short string must pass through, got %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
	if got := Truncate("héllo wörld", 7); len([]rune(got)) != 7 {
		t.Errorf("truncation must count runes, got %q", got)
	}
}

func TestNewResult_TruncatesDescription(t *testing.T) {
	long := make([]rune, 250)
	for i := range long {
		long[i] = 'x'
	}
	r := NewResult(TypeTask, "id", "title", string(long), 10, nil)
	if len([]rune(r.Description)) != descriptionLimit {
		t.Errorf("expected description capped at %d runes, got %d", descriptionLimit, len([]rune(r.Description)))
	}
}
