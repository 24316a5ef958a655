package api

import (
	"encoding/json"
	"net/http"

	appconsts "github.com/taskdeck/taskdeck/application/consts"
	"github.com/taskdeck/taskdeck/application/core"
	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/consts"
	"github.com/taskdeck/taskdeck/internal/query"
	"github.com/taskdeck/taskdeck/internal/service"
)

type TaskController struct {
	*core.BaseComponent
	TaskSvc *service.TaskService `infra:"dep:task_service"`

	env string
}

func NewTaskController(env string) *TaskController {
	return &TaskController{
		BaseComponent: core.NewBaseComponent(consts.COMP_CTRL_TASK, appconsts.COMPONENT_LOGGING),
		env:           env,
	}
}

func (tc *TaskController) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(r.Context(), w, tc.env, err)
}

type taskRequest struct {
	Title       string `json:"title"`
	IsCompleted *bool  `json:"isCompleted"`
	Priority    string `json:"priority"`
}

func (req taskRequest) input() service.TaskInput {
	return service.TaskInput{Title: req.Title, IsCompleted: req.IsCompleted, Priority: req.Priority}
}

func (tc *TaskController) listTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, err := CurrentUser(ctx)
	if err != nil {
		tc.fail(w, r, err)
		return
	}
	spec, err := query.Build(owner, r.URL.Query())
	if err != nil {
		tc.fail(w, r, err)
		return
	}
	items, page, err := tc.TaskSvc.List(ctx, spec)
	if err != nil {
		tc.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks":      shapeTasks(items, spec.Fields),
		"pagination": page,
	})
}

func (tc *TaskController) getTask(w http.ResponseWriter, r *http.Request, id int64) {
	ctx := r.Context()
	owner, err := CurrentUser(ctx)
	if err != nil {
		tc.fail(w, r, err)
		return
	}
	// the projection params are honored on single reads too
	spec, err := query.Build(owner, r.URL.Query())
	if err != nil {
		tc.fail(w, r, err)
		return
	}
	t, err := tc.TaskSvc.Get(ctx, id, owner)
	if err != nil {
		tc.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shapeTask(t, spec.Fields))
}

func (tc *TaskController) createTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, err := CurrentUser(ctx)
	if err != nil {
		tc.fail(w, r, err)
		return
	}
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tc.fail(w, r, apperr.Validation([]string{"request body must be valid JSON"}))
		return
	}
	t, err := tc.TaskSvc.Create(ctx, owner, req.input())
	if err != nil {
		tc.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, shapeTask(t, query.DefaultFields()))
}

func (tc *TaskController) bulkCreateTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, err := CurrentUser(ctx)
	if err != nil {
		tc.fail(w, r, err)
		return
	}
	var req struct {
		Tasks []taskRequest `json:"tasks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tc.fail(w, r, apperr.Validation([]string{"request body must be valid JSON"}))
		return
	}
	items := make([]service.TaskInput, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		items = append(items, t.input())
	}
	n, err := tc.TaskSvc.BulkCreate(ctx, owner, items)
	if err != nil {
		tc.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"created": n})
}

func (tc *TaskController) updateTask(w http.ResponseWriter, r *http.Request, id int64) {
	ctx := r.Context()
	owner, err := CurrentUser(ctx)
	if err != nil {
		tc.fail(w, r, err)
		return
	}
	var req struct {
		Title       *string `json:"title"`
		IsCompleted *bool   `json:"isCompleted"`
		Priority    *string `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tc.fail(w, r, apperr.Validation([]string{"request body must be valid JSON"}))
		return
	}
	t, err := tc.TaskSvc.Update(ctx, id, owner, service.TaskUpdate{
		Title:       req.Title,
		IsCompleted: req.IsCompleted,
		Priority:    req.Priority,
	})
	if err != nil {
		tc.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shapeTask(t, query.DefaultFields()))
}

func (tc *TaskController) deleteTask(w http.ResponseWriter, r *http.Request, id int64) {
	ctx := r.Context()
	owner, err := CurrentUser(ctx)
	if err != nil {
		tc.fail(w, r, err)
		return
	}
	deletedID, err := tc.TaskSvc.Delete(ctx, id, owner)
	if err != nil {
		tc.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": deletedID})
}
