package query

import (
	"errors"
	"net/url"
	"testing"

	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/consts"
)

func TestBuildDefaults(t *testing.T) {
	s, err := Build(7, url.Values{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if s.OwnerID != 7 {
		t.Fatalf("expected owner 7, got %d", s.OwnerID)
	}
	if s.Page != consts.DEFAULT_PAGE || s.Limit != consts.DEFAULT_LIMIT {
		t.Fatalf("expected default pagination, got page=%d limit=%d", s.Page, s.Limit)
	}
	if s.SortColumn != "created_at" || s.SortOrder != "desc" {
		t.Fatalf("expected created_at desc, got %s %s", s.SortColumn, s.SortOrder)
	}
	for _, f := range s.Fields {
		if f == "userId" {
			t.Fatalf("default projection must not expose userId")
		}
	}
	found := false
	for _, c := range s.Columns {
		if c == "user_id" {
			found = true
		}
	}
	if !found {
		t.Fatalf("user_id column must always be selected")
	}
}

func TestBuildPaginationClampsSilently(t *testing.T) {
	cases := []url.Values{
		{"page": {"-3"}, "limit": {"1000"}},
		{"page": {"abc"}, "limit": {"xyz"}},
		{"page": {"0"}, "limit": {"0"}},
	}
	for _, q := range cases {
		s, err := Build(1, q)
		if err != nil {
			t.Fatalf("pagination must never error, got %v for %v", err, q)
		}
		if s.Page != 1 || s.Limit != 10 {
			t.Fatalf("expected clamped defaults for %v, got page=%d limit=%d", q, s.Page, s.Limit)
		}
	}
	s, err := Build(1, url.Values{"page": {"3"}, "limit": {"100"}})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if s.Page != 3 || s.Limit != 100 {
		t.Fatalf("expected page=3 limit=100, got %d %d", s.Page, s.Limit)
	}
}

func TestBuildSearchStrict(t *testing.T) {
	if _, err := Build(1, url.Values{"q": {" a "}}); err == nil {
		t.Fatalf("1-char search must fail validation")
	}
	s, err := Build(1, url.Values{"q": {" ab "}})
	if err != nil {
		t.Fatalf("2-char search must pass, got %v", err)
	}
	if s.Search != "ab" {
		t.Fatalf("expected trimmed search %q, got %q", "ab", s.Search)
	}
}

func TestBuildSort(t *testing.T) {
	s, _ := Build(1, url.Values{"sort_by": {"priority"}})
	if s.SortColumn != "priority" || s.SortOrder != "asc" {
		t.Fatalf("non-time sort without order must be asc, got %s %s", s.SortColumn, s.SortOrder)
	}
	s, _ = Build(1, url.Values{"sort_by": {"createdAt"}})
	if s.SortColumn != "created_at" || s.SortOrder != "desc" {
		t.Fatalf("createdAt sort defaults to desc, got %s %s", s.SortColumn, s.SortOrder)
	}
	s, _ = Build(1, url.Values{"sort_by": {"title"}, "sort_order": {"desc"}})
	if s.SortColumn != "title" || s.SortOrder != "desc" {
		t.Fatalf("explicit order must win, got %s %s", s.SortColumn, s.SortOrder)
	}
	if _, err := Build(1, url.Values{"sort_by": {"password"}}); err == nil {
		t.Fatalf("unknown sort field must fail validation")
	}
	if _, err := Build(1, url.Values{"sort_order": {"sideways"}}); err == nil {
		t.Fatalf("bad sort order must fail validation")
	}
}

func TestBuildProjection(t *testing.T) {
	s, err := Build(1, url.Values{"fields": {"title,priority"}})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(s.Fields) != 2 || s.Fields[0] != "title" || s.Fields[1] != "priority" {
		t.Fatalf("unexpected fields: %v", s.Fields)
	}
	found := false
	for _, c := range s.Columns {
		if c == "user_id" {
			found = true
		}
	}
	if !found {
		t.Fatalf("user_id must be force-included in columns, got %v", s.Columns)
	}
	if _, err := Build(1, url.Values{"fields": {"title,hashedPassword"}}); err == nil {
		t.Fatalf("unknown field must fail validation")
	}

	s, err = Build(1, url.Values{"fields": {"userId,title"}})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	n := 0
	for _, c := range s.Columns {
		if c == "user_id" {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("user_id selected %d times, want 1", n)
	}
}

func TestBuildFiltersDropInvalidSilently(t *testing.T) {
	s, err := Build(1, url.Values{"priority": {"urgent"}, "completed": {"maybe"}})
	if err != nil {
		t.Fatalf("invalid filters must be dropped, not rejected: %v", err)
	}
	if s.Priority != "" || s.Completed != nil {
		t.Fatalf("invalid filters must be dropped, got priority=%q completed=%v", s.Priority, s.Completed)
	}
	s, _ = Build(1, url.Values{"priority": {"HIGH"}, "completed": {"true"}})
	if s.Priority != consts.PRIORITY_HIGH {
		t.Fatalf("expected high priority filter, got %q", s.Priority)
	}
	if s.Completed == nil || !*s.Completed {
		t.Fatalf("expected completed=true filter")
	}
}

func TestBuildCollectsAllProblems(t *testing.T) {
	_, err := Build(1, url.Values{
		"q":       {"x"},
		"sort_by": {"bogus"},
		"fields":  {"nope"},
	})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Problems) != 3 {
		t.Fatalf("expected 3 problems in one pass, got %d: %v", len(ve.Problems), ve.Problems)
	}
}
