package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	promclient "github.com/prometheus/client_golang/prometheus"

	appprom "github.com/taskdeck/taskdeck/application/components/prometheus"
	"github.com/taskdeck/taskdeck/application/core"
	"github.com/taskdeck/taskdeck/internal/apperr"
	bizConfig "github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/consts"
	"github.com/taskdeck/taskdeck/internal/dao"
	"github.com/taskdeck/taskdeck/internal/model"
)

// TaskInput is the caller-supplied shape for creating a task. Omitted
// optional fields take their defaults (priority medium, not completed).
type TaskInput struct {
	Title       string
	IsCompleted *bool
	Priority    string
}

// TaskUpdate carries a partial update; nil means "leave unchanged".
type TaskUpdate struct {
	Title       *string
	IsCompleted *bool
	Priority    *string
}

// TaskService executes validated query specs and mutations against the
// task store. All operations are owner-scoped: a row that exists but
// belongs to someone else answers exactly like an absent row, except
// for single-record reads under the global show policy.
type TaskService struct {
	*core.BaseComponent
	TaskDao dao.TaskDao `infra:"dep:task_dao"`

	cfg *bizConfig.BizConfig

	opsOnce sync.Once
	ops     *promclient.CounterVec
}

func NewTaskService() *TaskService {
	return &TaskService{
		BaseComponent: core.NewBaseComponent(consts.COMP_SVC_TASK),
		cfg:           bizConfig.GetBizConfig(),
	}
}

// observe counts one operation outcome. The counter is created lazily
// so the service works with the metrics component disabled.
func (s *TaskService) observe(op string, err error) {
	s.opsOnce.Do(func() {
		if m := appprom.C(); m != nil {
			s.ops = m.NewCounter("task_operations_total",
				"Task operations by name and outcome.", []string{"op", "outcome"})
		}
	})
	if s.ops == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.ops.WithLabelValues(op, outcome).Inc()
}

// List runs the query spec and assembles the pagination envelope. An owner
// with zero matching rows gets ErrNotFound, not an empty page.
func (s *TaskService) List(ctx context.Context, spec *model.QuerySpec) ([]*model.Task, model.Page, error) {
	total, err := s.TaskDao.Count(ctx, spec)
	if err != nil {
		s.observe("list", err)
		return nil, model.Page{}, err
	}
	if total == 0 {
		s.observe("list", apperr.ErrNotFound)
		return nil, model.Page{}, apperr.ErrNotFound
	}
	items, err := s.TaskDao.List(ctx, spec)
	if err != nil {
		s.observe("list", err)
		return nil, model.Page{}, err
	}
	s.observe("list", nil)
	return items, model.NewPage(spec.Page, spec.Limit, total), nil
}

// Get reads one task. Under the owner_scoped policy the lookup uses
// the compound key and a foreign id is indistinguishable from an
// absent one; under the global policy the row is fetched by id alone
// and a foreign row answers ErrForbidden.
func (s *TaskService) Get(ctx context.Context, id, ownerID int64) (*model.Task, error) {
	var (
		t   *model.Task
		err error
	)
	if s.cfg.Tasks.Policy() == consts.SHOW_GLOBAL {
		t, err = s.TaskDao.GetByID(ctx, id)
		if err == nil && t.UserID != ownerID {
			err = apperr.ErrForbidden
			t = nil
		}
	} else {
		t, err = s.TaskDao.Get(ctx, id, ownerID)
	}
	s.observe("get", err)
	return t, err
}

func (s *TaskService) Create(ctx context.Context, ownerID int64, in TaskInput) (*model.Task, error) {
	t, problems := buildTask(ownerID, in, "")
	if err := apperr.Validation(problems); err != nil {
		s.observe("create", err)
		return nil, err
	}
	if err := s.TaskDao.Insert(ctx, t); err != nil {
		s.observe("create", err)
		return nil, err
	}
	s.observe("create", nil)
	return t, nil
}

// BulkCreate validates the whole batch up front and inserts it in one
// multi-row write. Any invalid item rejects the batch; partial success
// is not a supported state.
func (s *TaskService) BulkCreate(ctx context.Context, ownerID int64, items []TaskInput) (int64, error) {
	if len(items) > consts.MAX_BULK_TASKS {
		s.observe("bulk_create", apperr.ErrTooManyItems)
		return 0, apperr.ErrTooManyItems
	}
	var problems []string
	tasks := make([]*model.Task, 0, len(items))
	for i, in := range items {
		t, itemProblems := buildTask(ownerID, in, fmt.Sprintf("items[%d]: ", i))
		problems = append(problems, itemProblems...)
		tasks = append(tasks, t)
	}
	if err := apperr.Validation(problems); err != nil {
		s.observe("bulk_create", err)
		return 0, err
	}
	n, err := s.TaskDao.BulkInsert(ctx, tasks)
	s.observe("bulk_create", err)
	return n, err
}

// Update applies the recognized fields of a partial payload by
// compound key and returns the fresh row.
func (s *TaskService) Update(ctx context.Context, id, ownerID int64, in TaskUpdate) (*model.Task, error) {
	fields := make(map[string]any)
	var problems []string
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		problems = append(problems, validateTitle(title, "")...)
		fields["title"] = title
	}
	if in.IsCompleted != nil {
		fields["is_completed"] = *in.IsCompleted
	}
	if in.Priority != nil {
		p := strings.ToLower(strings.TrimSpace(*in.Priority))
		if !consts.ValidPriority(p) {
			problems = append(problems, priorityProblem(""))
		}
		fields["priority"] = p
	}
	if len(fields) == 0 {
		s.observe("update", apperr.ErrNoFieldsToChange)
		return nil, apperr.ErrNoFieldsToChange
	}
	if err := apperr.Validation(problems); err != nil {
		s.observe("update", err)
		return nil, err
	}
	rows, err := s.TaskDao.UpdateFields(ctx, id, ownerID, fields)
	if err != nil {
		s.observe("update", err)
		return nil, err
	}
	if rows == 0 {
		s.observe("update", apperr.ErrNotFound)
		return nil, apperr.ErrNotFound
	}
	t, err := s.TaskDao.Get(ctx, id, ownerID)
	s.observe("update", err)
	return t, err
}

func (s *TaskService) Delete(ctx context.Context, id, ownerID int64) (int64, error) {
	rows, err := s.TaskDao.Delete(ctx, id, ownerID)
	if err != nil {
		s.observe("delete", err)
		return 0, err
	}
	if rows == 0 {
		s.observe("delete", apperr.ErrNotFound)
		return 0, apperr.ErrNotFound
	}
	s.observe("delete", nil)
	return id, nil
}

// buildTask normalizes one input into a row, collecting problems with
// the given prefix (used to index bulk items).
func buildTask(ownerID int64, in TaskInput, prefix string) (*model.Task, []string) {
	title := strings.TrimSpace(in.Title)
	problems := validateTitle(title, prefix)

	priority := consts.PRIORITY_MEDIUM
	if p := strings.ToLower(strings.TrimSpace(in.Priority)); p != "" {
		if consts.ValidPriority(p) {
			priority = consts.Priority(p)
		} else {
			problems = append(problems, priorityProblem(prefix))
		}
	}
	completed := false
	if in.IsCompleted != nil {
		completed = *in.IsCompleted
	}
	return &model.Task{
		Title:       title,
		IsCompleted: completed,
		Priority:    priority,
		UserID:      ownerID,
	}, problems
}

func validateTitle(title, prefix string) []string {
	if title == "" {
		return []string{prefix + "title is required"}
	}
	if len([]rune(title)) > consts.MAX_TITLE_LEN {
		return []string{fmt.Sprintf("%stitle must be at most %d characters long", prefix, consts.MAX_TITLE_LEN)}
	}
	return nil
}

func priorityProblem(prefix string) string {
	return fmt.Sprintf("%spriority must be one of %s, %s, %s",
		prefix, consts.PRIORITY_LOW, consts.PRIORITY_MEDIUM, consts.PRIORITY_HIGH)
}
