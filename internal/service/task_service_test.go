package service

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/taskdeck/taskdeck/internal/apperr"
	bizConfig "github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/consts"
	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/query"
)

// stubTaskDao implements TaskDao in memory with real filter/pagination
// semantics so the service contract can be asserted literally.
type stubTaskDao struct {
	tasks       map[int64]*model.Task
	nextID      int64
	updateCalls int
}

func newStubTaskDao() *stubTaskDao {
	return &stubTaskDao{tasks: make(map[int64]*model.Task)}
}

func (s *stubTaskDao) matches(t *model.Task, spec *model.QuerySpec) bool {
	if t.UserID != spec.OwnerID {
		return false
	}
	if spec.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(spec.Search)) {
		return false
	}
	if spec.Priority != "" && t.Priority != spec.Priority {
		return false
	}
	if spec.Completed != nil && t.IsCompleted != *spec.Completed {
		return false
	}
	return true
}

func (s *stubTaskDao) filtered(spec *model.QuerySpec) []*model.Task {
	var out []*model.Task
	for _, t := range s.tasks {
		if s.matches(t, spec) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *stubTaskDao) List(ctx context.Context, spec *model.QuerySpec) ([]*model.Task, error) {
	all := s.filtered(spec)
	start := spec.Offset()
	if start > len(all) {
		return nil, nil
	}
	end := start + spec.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (s *stubTaskDao) Count(ctx context.Context, spec *model.QuerySpec) (int64, error) {
	return int64(len(s.filtered(spec))), nil
}

func (s *stubTaskDao) Get(ctx context.Context, id, ownerID int64) (*model.Task, error) {
	if t, ok := s.tasks[id]; ok && t.UserID == ownerID {
		copied := *t
		return &copied, nil
	}
	return nil, apperr.ErrNotFound
}

func (s *stubTaskDao) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	if t, ok := s.tasks[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, apperr.ErrNotFound
}

func (s *stubTaskDao) Insert(ctx context.Context, t *model.Task) error {
	s.nextID++
	t.ID = s.nextID
	copied := *t
	s.tasks[t.ID] = &copied
	return nil
}

func (s *stubTaskDao) BulkInsert(ctx context.Context, tasks []*model.Task) (int64, error) {
	for _, t := range tasks {
		_ = s.Insert(ctx, t)
	}
	return int64(len(tasks)), nil
}

func (s *stubTaskDao) UpdateFields(ctx context.Context, id, ownerID int64, fields map[string]any) (int64, error) {
	s.updateCalls++
	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return 0, nil
	}
	if v, ok := fields["title"]; ok {
		t.Title = v.(string)
	}
	if v, ok := fields["is_completed"]; ok {
		t.IsCompleted = v.(bool)
	}
	if v, ok := fields["priority"]; ok {
		t.Priority = consts.Priority(v.(string))
	}
	return 1, nil
}

func (s *stubTaskDao) Delete(ctx context.Context, id, ownerID int64) (int64, error) {
	if t, ok := s.tasks[id]; ok && t.UserID == ownerID {
		delete(s.tasks, id)
		return 1, nil
	}
	return 0, nil
}

func newTestTaskService() (*TaskService, *stubTaskDao) {
	da := newStubTaskDao()
	ts := NewTaskService()
	ts.TaskDao = da
	return ts, da
}

func specFor(t *testing.T, owner int64, rawQuery string) *model.QuerySpec {
	t.Helper()
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		t.Fatalf("bad query %q: %v", rawQuery, err)
	}
	spec, err := query.Build(owner, values)
	if err != nil {
		t.Fatalf("build spec failed: %v", err)
	}
	return spec
}

func TestCreateAppliesDefaults(t *testing.T) {
	ts, _ := newTestTaskService()
	created, err := ts.Create(context.Background(), 1, TaskInput{Title: "buy milk"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	got, err := ts.Get(context.Background(), created.ID, 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.IsCompleted {
		t.Fatalf("new task must not be completed")
	}
	if got.Priority != consts.PRIORITY_MEDIUM {
		t.Fatalf("expected medium priority, got %q", got.Priority)
	}
}

func TestCreateValidatesTitle(t *testing.T) {
	ts, _ := newTestTaskService()
	if _, err := ts.Create(context.Background(), 1, TaskInput{Title: "   "}); err == nil {
		t.Fatalf("blank title must fail")
	}
	long := strings.Repeat("x", consts.MAX_TITLE_LEN+1)
	if _, err := ts.Create(context.Background(), 1, TaskInput{Title: long}); err == nil {
		t.Fatalf("overlong title must fail")
	}
}

func TestCrossTenantReadsLikeAbsent(t *testing.T) {
	ts, _ := newTestTaskService()
	created, err := ts.Create(context.Background(), 1, TaskInput{Title: "secret"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	const intruder = 2
	if _, err := ts.Get(context.Background(), created.ID, intruder); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("foreign get must be not found, got %v", err)
	}
	title := "stolen"
	if _, err := ts.Update(context.Background(), created.ID, intruder, TaskUpdate{Title: &title}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("foreign update must be not found, got %v", err)
	}
	if _, err := ts.Delete(context.Background(), created.ID, intruder); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("foreign delete must be not found, got %v", err)
	}
	// still intact for the owner
	if _, err := ts.Get(context.Background(), created.ID, 1); err != nil {
		t.Fatalf("owner get failed after foreign attempts: %v", err)
	}
}

func TestListEmptyIsNotFound(t *testing.T) {
	ts, _ := newTestTaskService()
	_, _, err := ts.List(context.Background(), specFor(t, 1, ""))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("empty list must be not found, got %v", err)
	}
}

func TestListPagination(t *testing.T) {
	ts, _ := newTestTaskService()
	for i := 0; i < 25; i++ {
		if _, err := ts.Create(context.Background(), 1, TaskInput{Title: "task"}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	items, page, err := ts.List(context.Background(), specFor(t, 1, "page=1&limit=10"))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 10 || !page.HasNext || page.HasPrev {
		t.Fatalf("page 1: got %d items hasNext=%v hasPrev=%v", len(items), page.HasNext, page.HasPrev)
	}
	if page.Total != 25 || page.Pages != 3 {
		t.Fatalf("expected total=25 pages=3, got total=%d pages=%d", page.Total, page.Pages)
	}
	items, page, err = ts.List(context.Background(), specFor(t, 1, "page=3&limit=10"))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 5 || page.HasNext || !page.HasPrev {
		t.Fatalf("page 3: got %d items hasNext=%v hasPrev=%v", len(items), page.HasNext, page.HasPrev)
	}
}

func TestListSearchFilters(t *testing.T) {
	ts, _ := newTestTaskService()
	ctx := context.Background()
	if _, err := ts.Create(ctx, 1, TaskInput{Title: "Walk the dog"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := ts.Create(ctx, 1, TaskInput{Title: "groceries"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	items, _, err := ts.List(ctx, specFor(t, 1, "q=DO"))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Walk the dog" {
		t.Fatalf("case-insensitive search broken: %+v", items)
	}
}

func TestBulkCreateCap(t *testing.T) {
	ts, da := newTestTaskService()
	items := make([]TaskInput, consts.MAX_BULK_TASKS+1)
	for i := range items {
		items[i] = TaskInput{Title: "task"}
	}
	if _, err := ts.BulkCreate(context.Background(), 1, items); !errors.Is(err, apperr.ErrTooManyItems) {
		t.Fatalf("expected too many items, got %v", err)
	}
	if len(da.tasks) != 0 {
		t.Fatalf("oversized batch must create zero rows, got %d", len(da.tasks))
	}
}

func TestBulkCreateAllOrNothing(t *testing.T) {
	ts, da := newTestTaskService()
	items := []TaskInput{
		{Title: "a1"}, {Title: "a2"}, {Title: "  "}, {Title: "a4"}, {Title: "a5"},
	}
	_, err := ts.BulkCreate(context.Background(), 1, items)
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(da.tasks) != 0 {
		t.Fatalf("invalid batch must create zero rows, got %d", len(da.tasks))
	}

	n, err := ts.BulkCreate(context.Background(), 1, []TaskInput{{Title: "b1"}, {Title: "b2"}, {Title: "b3"}})
	if err != nil {
		t.Fatalf("bulk create failed: %v", err)
	}
	if n != 3 || len(da.tasks) != 3 {
		t.Fatalf("expected 3 created, got n=%d stored=%d", n, len(da.tasks))
	}
}

func TestUpdateEmptyPayload(t *testing.T) {
	ts, da := newTestTaskService()
	created, err := ts.Create(context.Background(), 1, TaskInput{Title: "task"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err = ts.Update(context.Background(), created.ID, 1, TaskUpdate{})
	if !errors.Is(err, apperr.ErrNoFieldsToChange) {
		t.Fatalf("expected no fields to change, got %v", err)
	}
	if da.updateCalls != 0 {
		t.Fatalf("empty update must not touch the store, got %d calls", da.updateCalls)
	}
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	ts, _ := newTestTaskService()
	created, err := ts.Create(context.Background(), 1, TaskInput{Title: "task"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	done := true
	got, err := ts.Update(context.Background(), created.ID, 1, TaskUpdate{IsCompleted: &done})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !got.IsCompleted || got.Title != "task" {
		t.Fatalf("partial update broken: %+v", got)
	}
}

func TestGetGlobalPolicyAnswersForbidden(t *testing.T) {
	ts, _ := newTestTaskService()
	ts.cfg = &bizConfig.BizConfig{Tasks: bizConfig.TasksConfig{ShowPolicy: string(consts.SHOW_GLOBAL)}}
	created, err := ts.Create(context.Background(), 1, TaskInput{Title: "task"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := ts.Get(context.Background(), created.ID, 2); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("global policy must answer forbidden, got %v", err)
	}
	if _, err := ts.Get(context.Background(), created.ID+99, 2); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("truly absent row stays not found, got %v", err)
	}
}
