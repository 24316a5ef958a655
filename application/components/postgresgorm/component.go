package postgresgorm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taskdeck/taskdeck/application/components/logging"
	"github.com/taskdeck/taskdeck/application/consts"
	"github.com/taskdeck/taskdeck/application/core"
)

// PostgresGormComponent opens one gorm connection pool per configured
// datasource and hands them out by name. Schema migrations run before
// the component reports started, so DAOs never see a half-migrated
// database.
type PostgresGormComponent struct {
	*core.BaseComponent
	cfg *Config
	mu  sync.RWMutex
	dbs map[string]*gorm.DB
	gl  logger.Interface
}

func NewPostgresGormComponent(cfg *Config) *PostgresGormComponent {
	return &PostgresGormComponent{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_POSTGRES_GORM, consts.COMPONENT_LOGGING),
		cfg:           cfg,
		dbs:           make(map[string]*gorm.DB),
		gl:            newGormLogger(cfg),
	}
}

func (c *PostgresGormComponent) Start(ctx context.Context) error {
	if err := c.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if c.cfg == nil || !c.cfg.Enabled {
		return fmt.Errorf("postgres_gorm disabled or nil config")
	}
	if len(c.cfg.DataSources) == 0 {
		return fmt.Errorf("postgres_gorm: no data_sources configured")
	}
	for name, ds := range c.cfg.DataSources {
		if ds == nil {
			return fmt.Errorf("postgres_gorm: datasource %s config is nil", name)
		}
		db, err := c.openDataSource(ctx, name, ds)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.dbs[name] = db
		c.mu.Unlock()
		logging.Infof(ctx, "postgres datasource %s ready", name)
	}
	return nil
}

func (c *PostgresGormComponent) openDataSource(ctx context.Context, name string, ds *DataSourceConfig) (*gorm.DB, error) {
	dsn, err := buildDSN(ds)
	if err != nil {
		return nil, fmt.Errorf("postgres datasource %s dsn: %w", name, err)
	}
	db, err := gorm.Open(gormpg.Open(dsn), &gorm.Config{
		Logger:                 c.gl,
		SkipDefaultTransaction: ds.SkipDefaultTransaction,
		PrepareStmt:            ds.PrepareStmt,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres datasource %s open: %w", name, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres datasource %s sql.DB: %w", name, err)
	}
	applyPoolLimits(sqlDB, ds)

	if ds.PingOnStart {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := sqlDB.PingContext(pingCtx)
		cancel()
		if err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("postgres datasource %s ping: %w", name, err)
		}
	}

	if ds.MigrateEnabled {
		if strings.TrimSpace(ds.MigrateDir) == "" {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("postgres datasource %s: migrate_enabled without migrate_dir", name)
		}
		start := time.Now()
		if err := applyMigrations(ctx, sqlDB, ds.MigrateDir); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("postgres datasource %s migrations: %w", name, err)
		}
		logging.Infof(ctx, "postgres datasource %s migrated in %s", name, time.Since(start))
	}
	return db, nil
}

func applyPoolLimits(sqlDB *sql.DB, ds *DataSourceConfig) {
	open, idle, life := ds.MaxOpenConns, ds.MaxIdleConns, ds.ConnMaxLife
	if open <= 0 {
		open = 50
	}
	if idle <= 0 {
		idle = 10
	}
	if life <= 0 {
		life = 60 * time.Minute
	}
	sqlDB.SetMaxOpenConns(open)
	sqlDB.SetMaxIdleConns(idle)
	sqlDB.SetConnMaxLifetime(life)
	if ds.ConnMaxIdle > 0 {
		sqlDB.SetConnMaxIdleTime(ds.ConnMaxIdle)
	}
}

func (c *PostgresGormComponent) Stop(ctx context.Context) error {
	defer func() { _ = c.BaseComponent.Stop(ctx) }()
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, db := range c.dbs {
		if db == nil {
			continue
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		logging.Infof(ctx, "postgres datasource %s closed", name)
	}
	return nil
}

func (c *PostgresGormComponent) HealthCheck() error {
	if err := c.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for name, db := range c.dbs {
		if db == nil {
			return fmt.Errorf("datasource %s not initialized", name)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("datasource %s get sql.DB failed: %w", name, err)
		}
		if err := sqlDB.Ping(); err != nil {
			return fmt.Errorf("datasource %s ping failed: %w", name, err)
		}
	}
	return nil
}

func (c *PostgresGormComponent) GetDB(name string) (*gorm.DB, error) {
	c.mu.RLock()
	db, ok := c.dbs[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("postgres datasource %s not found", name)
	}
	return db, nil
}

func (c *PostgresGormComponent) GetSQLDB(name string) (*sql.DB, error) {
	db, err := c.GetDB(name)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB for %s: %w", name, err)
	}
	return sqlDB, nil
}

// buildDSN assembles a libpq keyword DSN unless one is given verbatim.
func buildDSN(ds *DataSourceConfig) (string, error) {
	if strings.TrimSpace(ds.DSN) != "" {
		return ds.DSN, nil
	}
	if ds.Host == "" || ds.User == "" || ds.Database == "" {
		return "", errors.New("host, user, database required when dsn not provided")
	}
	port := ds.Port
	if port == 0 {
		port = 5432
	}
	parts := []string{fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d",
		ds.Host, ds.User, ds.Password, ds.Database, port)}
	for k, v := range ds.Params {
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	return strings.Join(parts, " "), nil
}

// applyMigrations executes every .sql file in dir in lexical order,
// statement by statement. Files are expected to be idempotent
// (CREATE TABLE IF NOT EXISTS and the like).
func applyMigrations(ctx context.Context, db *sql.DB, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		for _, stmt := range strings.Split(string(b), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("exec %s: %w", f, err)
			}
		}
	}
	return nil
}

// gormLogger routes gorm output through the app logger so SQL lines
// carry trace ids like everything else.
type gormLogger struct {
	level logger.LogLevel
	slow  time.Duration
}

func newGormLogger(cfg *Config) logger.Interface {
	lvl := logger.Info
	slow := 200 * time.Millisecond
	if cfg != nil {
		switch strings.ToLower(cfg.LogLevel) {
		case "silent":
			lvl = logger.Silent
		case "error":
			lvl = logger.Error
		case "warn", "warning":
			lvl = logger.Warn
		}
		if cfg.SlowThreshold > 0 {
			slow = cfg.SlowThreshold
		}
	}
	return &gormLogger{level: lvl, slow: slow}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	nl := *l
	nl.level = level
	return &nl
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		logging.Infof(ctx, "[gorm] "+msg, data...)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		logging.Warnf(ctx, "[gorm] "+msg, data...)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		logging.Errorf(ctx, "[gorm] "+msg, data...)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sqlStr, rows := fc()
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		logging.Errorf(ctx, "[gorm] error elapsed=%s rows=%d sql=%s err=%v", elapsed, rows, sqlStr, err)
	case l.slow > 0 && elapsed > l.slow && l.level >= logger.Warn:
		logging.Warnf(ctx, "[gorm] slow elapsed=%s threshold=%s rows=%d sql=%s", elapsed, l.slow, rows, sqlStr)
	case l.level >= logger.Info:
		logging.Debugf(ctx, "[gorm] elapsed=%s rows=%d sql=%s", elapsed, rows, sqlStr)
	}
}
