package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/consts"
	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/service"
)

// memTaskDao is a minimal in-memory TaskDao for boundary tests.
type memTaskDao struct {
	tasks  map[int64]*model.Task
	nextID int64
}

func newMemTaskDao() *memTaskDao { return &memTaskDao{tasks: make(map[int64]*model.Task)} }

func (m *memTaskDao) filtered(spec *model.QuerySpec) []*model.Task {
	var out []*model.Task
	for _, t := range m.tasks {
		if t.UserID != spec.OwnerID {
			continue
		}
		if spec.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(spec.Search)) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memTaskDao) List(ctx context.Context, spec *model.QuerySpec) ([]*model.Task, error) {
	all := m.filtered(spec)
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

func (m *memTaskDao) Count(ctx context.Context, spec *model.QuerySpec) (int64, error) {
	return int64(len(m.filtered(spec))), nil
}

func (m *memTaskDao) Get(ctx context.Context, id, ownerID int64) (*model.Task, error) {
	if t, ok := m.tasks[id]; ok && t.UserID == ownerID {
		copied := *t
		return &copied, nil
	}
	return nil, apperr.ErrNotFound
}

func (m *memTaskDao) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	if t, ok := m.tasks[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, apperr.ErrNotFound
}

func (m *memTaskDao) Insert(ctx context.Context, t *model.Task) error {
	m.nextID++
	t.ID = m.nextID
	copied := *t
	m.tasks[t.ID] = &copied
	return nil
}

func (m *memTaskDao) BulkInsert(ctx context.Context, tasks []*model.Task) (int64, error) {
	for _, t := range tasks {
		_ = m.Insert(ctx, t)
	}
	return int64(len(tasks)), nil
}

func (m *memTaskDao) UpdateFields(ctx context.Context, id, ownerID int64, fields map[string]any) (int64, error) {
	t, ok := m.tasks[id]
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

func (m *memTaskDao) Delete(ctx context.Context, id, ownerID int64) (int64, error) {
	if t, ok := m.tasks[id]; ok && t.UserID == ownerID {
		delete(m.tasks, id)
		return 1, nil
	}
	return 0, nil
}

type stubVerifier struct {
	id  int64
	err error
}

func (s stubVerifier) Verify(ctx context.Context, rawToken string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.id, nil
}

func newTestRouter(verifier TokenVerifier) (chi.Router, *memTaskDao) {
	da := newMemTaskDao()
	svc := service.NewTaskService()
	svc.TaskDao = da
	tc := NewTaskController("test")
	tc.TaskSvc = svc

	r := chi.NewRouter()
	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(Authenticate(verifier, "test"))
		getID := func(r *http.Request) int64 {
			id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			return id
		}
		r.Get("/", tc.listTasks)
		r.Post("/", tc.createTask)
		r.Post("/bulk", tc.bulkCreateTasks)
		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) { tc.getTask(w, req, getID(req)) })
		r.Patch("/{id}", func(w http.ResponseWriter, req *http.Request) { tc.updateTask(w, req, getID(req)) })
		r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) { tc.deleteTask(w, req, getID(req)) })
	})
	return r, da
}

func doJSON(t *testing.T, r chi.Router, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	r, _ := newTestRouter(stubVerifier{id: 1})
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRejectedTokenIsUnauthorized(t *testing.T) {
	r, _ := newTestRouter(stubVerifier{err: apperr.ErrUnauthenticated})
	w := doJSON(t, r, http.MethodGet, "/api/tasks", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestCreateStripsOwnerField(t *testing.T) {
	r, _ := newTestRouter(stubVerifier{id: 1})
	w := doJSON(t, r, http.MethodPost, "/api/tasks", `{"title":"buy milk"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	if _, leaked := body["userId"]; leaked {
		t.Fatalf("owner id must not appear in default projection: %s", w.Body.String())
	}
	if body["priority"] != string(consts.PRIORITY_MEDIUM) || body["isCompleted"] != false {
		t.Fatalf("defaults missing from response: %s", w.Body.String())
	}
}

func TestGetProjectionCanIncludeOwner(t *testing.T) {
	r, _ := newTestRouter(stubVerifier{id: 1})
	if w := doJSON(t, r, http.MethodPost, "/api/tasks", `{"title":"buy milk"}`); w.Code != http.StatusCreated {
		t.Fatalf("seed create failed: %d", w.Code)
	}
	w := doJSON(t, r, http.MethodGet, "/api/tasks/1?fields=title,userId", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	if body["userId"] != float64(1) {
		t.Fatalf("explicitly projected userId missing: %s", w.Body.String())
	}
	if _, present := body["priority"]; present {
		t.Fatalf("unrequested field leaked into projection: %s", w.Body.String())
	}
}

func TestListEmptyAnswers404(t *testing.T) {
	r, _ := newTestRouter(stubVerifier{id: 1})
	w := doJSON(t, r, http.MethodGet, "/api/tasks", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("empty index must be 404, got %d", w.Code)
	}
}

func TestListEnvelope(t *testing.T) {
	r, _ := newTestRouter(stubVerifier{id: 1})
	for i := 0; i < 12; i++ {
		if w := doJSON(t, r, http.MethodPost, "/api/tasks", `{"title":"task"}`); w.Code != http.StatusCreated {
			t.Fatalf("seed create failed: %d", w.Code)
		}
	}
	w := doJSON(t, r, http.MethodGet, "/api/tasks?limit=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Tasks      []map[string]any `json:"tasks"`
		Pagination model.Page       `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	if len(body.Tasks) != 10 {
		t.Fatalf("expected 10 tasks, got %d", len(body.Tasks))
	}
	p := body.Pagination
	if p.Total != 12 || p.Pages != 2 || !p.HasNext || p.HasPrev {
		t.Fatalf("unexpected envelope: %+v", p)
	}
}

func TestShortSearchIs400WithProblems(t *testing.T) {
	r, _ := newTestRouter(stubVerifier{id: 1})
	w := doJSON(t, r, http.MethodGet, "/api/tasks?q=x", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body struct {
		Problems []string `json:"problems"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	if len(body.Problems) != 1 {
		t.Fatalf("expected one problem, got %v", body.Problems)
	}
}

func TestBulkCreateReturnsCount(t *testing.T) {
	r, da := newTestRouter(stubVerifier{id: 1})
	w := doJSON(t, r, http.MethodPost, "/api/tasks/bulk", `{"tasks":[{"title":"a"},{"title":"b"}]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	if body["created"] != float64(2) || len(da.tasks) != 2 {
		t.Fatalf("expected 2 created, got %s", w.Body.String())
	}
}

func TestMutationsOnForeignTasksAre404(t *testing.T) {
	r, da := newTestRouter(stubVerifier{id: 2})
	da.tasks[1] = &model.Task{ID: 1, Title: "secret", UserID: 1}
	da.nextID = 1

	if w := doJSON(t, r, http.MethodGet, "/api/tasks/1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("foreign get must be 404, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPatch, "/api/tasks/1", `{"title":"mine now"}`); w.Code != http.StatusNotFound {
		t.Fatalf("foreign update must be 404, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/api/tasks/1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("foreign delete must be 404, got %d", w.Code)
	}
	if da.tasks[1].Title != "secret" {
		t.Fatalf("foreign mutation must not change the row")
	}
}

func TestEmptyUpdateIs400(t *testing.T) {
	r, _ := newTestRouter(stubVerifier{id: 1})
	if w := doJSON(t, r, http.MethodPost, "/api/tasks", `{"title":"task"}`); w.Code != http.StatusCreated {
		t.Fatalf("seed create failed: %d", w.Code)
	}
	w := doJSON(t, r, http.MethodPatch, "/api/tasks/1", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty update must be 400, got %d", w.Code)
	}
}
