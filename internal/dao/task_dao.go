package dao

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/taskdeck/taskdeck/application/components/postgresgorm"
	"github.com/taskdeck/taskdeck/application/core"
	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/consts"
	"github.com/taskdeck/taskdeck/internal/model"
)

// TaskDao is the data-store seam for tasks. Every method scoped by an
// owner id treats a missing row and a foreign row identically.
type TaskDao interface {
	List(ctx context.Context, spec *model.QuerySpec) ([]*model.Task, error)
	Count(ctx context.Context, spec *model.QuerySpec) (int64, error)
	Get(ctx context.Context, id, ownerID int64) (*model.Task, error)
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	Insert(ctx context.Context, t *model.Task) error
	BulkInsert(ctx context.Context, tasks []*model.Task) (int64, error)
	UpdateFields(ctx context.Context, id, ownerID int64, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id, ownerID int64) (int64, error)
}

// TaskDaoComponent backs TaskDao with a gorm datasource resolved from
// the postgres component at start.
type TaskDaoComponent struct {
	*core.BaseComponent
	PG *postgresgorm.PostgresGormComponent `infra:"dep:postgres_gorm"`

	datasource string
	db         *gorm.DB
}

func NewTaskDao(datasource string) *TaskDaoComponent {
	return &TaskDaoComponent{
		BaseComponent: core.NewBaseComponent(consts.COMP_DAO_TASK),
		datasource:    datasource,
	}
}

func (d *TaskDaoComponent) Start(ctx context.Context) error {
	if d.IsActive() {
		return nil
	}
	db, err := d.PG.GetDB(d.datasource)
	if err != nil {
		return err
	}
	d.db = db
	return d.BaseComponent.Start(ctx)
}

// filtered builds the AND-combined predicate chain. The owner match is
// mandatory; search, priority and completion are additive. The search
// term is bound as a parameter, never concatenated.
func (d *TaskDaoComponent) filtered(ctx context.Context, spec *model.QuerySpec) *gorm.DB {
	q := d.db.WithContext(ctx).Model(&model.Task{}).Where("user_id = ?", spec.OwnerID)
	if spec.Search != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(spec.Search)+"%")
	}
	if spec.Priority != "" {
		q = q.Where("priority = ?", string(spec.Priority))
	}
	if spec.Completed != nil {
		q = q.Where("is_completed = ?", *spec.Completed)
	}
	return q
}

func (d *TaskDaoComponent) List(ctx context.Context, spec *model.QuerySpec) ([]*model.Task, error) {
	var list []*model.Task
	err := d.filtered(ctx, spec).
		Select(spec.Columns).
		Order(spec.SortColumn + " " + spec.SortOrder).
		Offset(spec.Offset()).
		Limit(spec.Limit).
		Find(&list).Error
	if err != nil {
		return nil, apperr.Store("task list", err)
	}
	return list, nil
}

func (d *TaskDaoComponent) Count(ctx context.Context, spec *model.QuerySpec) (int64, error) {
	var total int64
	if err := d.filtered(ctx, spec).Count(&total).Error; err != nil {
		return 0, apperr.Store("task count", err)
	}
	return total, nil
}

func (d *TaskDaoComponent) Get(ctx context.Context, id, ownerID int64) (*model.Task, error) {
	var t model.Task
	err := d.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Store("task get", err)
	}
	return &t, nil
}

func (d *TaskDaoComponent) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	var t model.Task
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Store("task get by id", err)
	}
	return &t, nil
}

func (d *TaskDaoComponent) Insert(ctx context.Context, t *model.Task) error {
	if err := d.db.WithContext(ctx).Create(t).Error; err != nil {
		return apperr.Store("task insert", err)
	}
	return nil
}

// BulkInsert writes all rows in one transaction; a failure rolls the
// whole batch back.
func (d *TaskDaoComponent) BulkInsert(ctx context.Context, tasks []*model.Task) (int64, error) {
	if len(tasks) == 0 {
		return 0, nil
	}
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&tasks).Error
	})
	if err != nil {
		return 0, apperr.Store("task bulk insert", err)
	}
	return int64(len(tasks)), nil
}

func (d *TaskDaoComponent) UpdateFields(ctx context.Context, id, ownerID int64, fields map[string]any) (int64, error) {
	res := d.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(fields)
	if res.Error != nil {
		return 0, apperr.Store("task update", res.Error)
	}
	return res.RowsAffected, nil
}

func (d *TaskDaoComponent) Delete(ctx context.Context, id, ownerID int64) (int64, error) {
	res := d.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&model.Task{})
	if res.Error != nil {
		return 0, apperr.Store("task delete", res.Error)
	}
	return res.RowsAffected, nil
}
