package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/application/components/logging"
	"github.com/taskdeck/taskdeck/application/consts"
	"github.com/taskdeck/taskdeck/application/core"
)

// RedisComponent owns one universal client covering single, cluster
// and sentinel deployments. The auth token denylist rides on it.
type RedisComponent struct {
	*core.BaseComponent
	cfg    *Config
	client redis.UniversalClient
}

func NewRedisComponent(cfg *Config) *RedisComponent {
	return &RedisComponent{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_REDIS, consts.COMPONENT_LOGGING),
		cfg:           cfg,
	}
}

func (rc *RedisComponent) Start(ctx context.Context) error {
	if err := rc.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if rc.cfg == nil {
		return errors.New("redis config nil")
	}
	if len(rc.cfg.Addresses) == 0 {
		return errors.New("redis addresses empty")
	}

	mode := strings.ToLower(rc.cfg.Mode)
	switch mode {
	case "single", "cluster":
	case "sentinel":
		if rc.cfg.SentinelMaster == "" {
			return errors.New("sentinel mode requires sentinel_master")
		}
	default:
		return fmt.Errorf("unknown redis mode: %s", rc.cfg.Mode)
	}

	rc.client = redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:           rc.cfg.Addresses,
		DB:              rc.cfg.DB,
		Username:        rc.cfg.Username,
		Password:        rc.cfg.Password,
		MasterName:      rc.cfg.SentinelMaster,
		PoolSize:        rc.cfg.PoolSize,
		MinIdleConns:    rc.cfg.MinIdleConns,
		DialTimeout:     rc.cfg.DialTimeout,
		ReadTimeout:     rc.cfg.ReadTimeout,
		WriteTimeout:    rc.cfg.WriteTimeout,
		ConnMaxLifetime: rc.cfg.ConnMaxLifetime,
		ConnMaxIdleTime: rc.cfg.ConnMaxIdleTime,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.ping(pingCtx); err != nil {
		_ = rc.client.Close()
		rc.client = nil
		return fmt.Errorf("redis ping failed: %w", err)
	}

	logging.Info(ctx, "redis started",
		zap.String("mode", mode),
		zap.Strings("addrs", rc.cfg.Addresses),
	)
	return nil
}

func (rc *RedisComponent) Stop(ctx context.Context) error {
	defer rc.BaseComponent.Stop(ctx)
	if rc.client != nil {
		_ = rc.client.Close()
	}
	return nil
}

func (rc *RedisComponent) HealthCheck() error {
	if err := rc.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if rc.client == nil {
		return errors.New("redis client nil")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return rc.ping(ctx)
}

func (rc *RedisComponent) ping(ctx context.Context) error {
	if rc.client == nil {
		return errors.New("no client")
	}
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisComponent) Client() redis.UniversalClient { return rc.client }
