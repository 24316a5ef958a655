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

type UserDao interface {
	Insert(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

type UserDaoComponent struct {
	*core.BaseComponent
	PG *postgresgorm.PostgresGormComponent `infra:"dep:postgres_gorm"`

	datasource string
	db         *gorm.DB
}

func NewUserDao(datasource string) *UserDaoComponent {
	return &UserDaoComponent{
		BaseComponent: core.NewBaseComponent(consts.COMP_DAO_USER),
		datasource:    datasource,
	}
}

func (d *UserDaoComponent) Start(ctx context.Context) error {
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

func (d *UserDaoComponent) Insert(ctx context.Context, u *model.User) error {
	if err := d.db.WithContext(ctx).Create(u).Error; err != nil {
		return apperr.Store("user insert", err)
	}
	return nil
}

// GetByEmail matches the stored lowercase form regardless of input casing.
func (d *UserDaoComponent) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := d.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Store("user get by email", err)
	}
	return &u, nil
}

func (d *UserDaoComponent) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Store("user get by id", err)
	}
	return &u, nil
}
