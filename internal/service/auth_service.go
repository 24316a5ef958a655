package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/taskdeck/application/components/logging"
	redisComp "github.com/taskdeck/taskdeck/application/components/redis"
	"github.com/taskdeck/taskdeck/application/core"
	"github.com/taskdeck/taskdeck/internal/apperr"
	bizConfig "github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/consts"
	"github.com/taskdeck/taskdeck/internal/dao"
	"github.com/taskdeck/taskdeck/internal/model"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// TokenRevoker is the logoff denylist. Revoked token ids stay listed
// until the token would have expired anyway.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type redisRevoker struct{ client goredis.UniversalClient }

func (r *redisRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return r.client.Set(ctx, "auth:revoked:"+jti, "1", ttl).Err()
}

func (r *redisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, "auth:revoked:"+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// memoryRevoker backs single-process deployments without redis.
type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemoryRevoker() *memoryRevoker {
	return &memoryRevoker{revoked: make(map[string]time.Time)}
}

func (m *memoryRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (m *memoryRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.revoked[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(m.revoked, jti)
		return false, nil
	}
	return true, nil
}

// AuthService owns registration, logon/logoff and token verification.
// It is the only code that touches credential hashes.
type AuthService struct {
	*core.BaseComponent
	UserDao dao.UserDao               `infra:"dep:user_dao"`
	Redis   *redisComp.RedisComponent `infra:"dep:redis?"`

	cfg     *bizConfig.BizConfig
	revoker TokenRevoker
}

// tokens returns the denylist, defaulting to the in-memory one until
// Start wires redis.
func (s *AuthService) tokens() TokenRevoker {
	if s.revoker == nil {
		s.revoker = newMemoryRevoker()
	}
	return s.revoker
}

func NewAuthService() *AuthService {
	return &AuthService{
		BaseComponent: core.NewBaseComponent(consts.COMP_SVC_AUTH),
		cfg:           bizConfig.GetBizConfig(),
	}
}

func (s *AuthService) Start(ctx context.Context) error {
	if s.IsActive() {
		return nil
	}
	if s.cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth_service: biz_config.auth.jwt_secret is required")
	}
	if s.Redis != nil {
		s.revoker = &redisRevoker{client: s.Redis.Client()}
	} else {
		s.revoker = newMemoryRevoker()
		logging.Warn(ctx, "auth_service: redis disabled, token revocation is process-local")
	}
	return s.BaseComponent.Start(ctx)
}

// Register creates a user with a bcrypt credential hash and a
// lowercase email. A taken email reports as a validation problem.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	var problems []string
	if name == "" {
		problems = append(problems, "name is required")
	}
	if email == "" || !emailPattern.MatchString(email) {
		problems = append(problems, "a valid email is required")
	}
	if len(password) < 6 {
		problems = append(problems, "password must be at least 6 characters long")
	}
	if err := apperr.Validation(problems); err != nil {
		return nil, err
	}

	if _, err := s.UserDao.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Validation([]string{"Email already registered"})
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	cost := s.cfg.Auth.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, apperr.Store("password hash", err)
	}
	u := &model.User{Name: name, Email: email, HashedPassword: string(hash)}
	if err := s.UserDao.Insert(ctx, u); err != nil {
		return nil, err
	}
	logging.Infof(ctx, "user registered id=%d", u.ID)
	return u, nil
}

// Logon checks credentials and issues a signed token. Unknown email
// and wrong password answer identically.
func (s *AuthService) Logon(ctx context.Context, email, password string) (string, error) {
	u, err := s.UserDao.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.ErrUnauthenticated
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return "", apperr.ErrUnauthenticated
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(u.ID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Auth.TokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.Auth.JWTSecret))
	if err != nil {
		return "", apperr.Store("token sign", err)
	}
	return token, nil
}

// Logoff revokes the presented token until its natural expiry.
func (s *AuthService) Logoff(ctx context.Context, rawToken string) error {
	claims, err := s.parse(rawToken)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.tokens().Revoke(ctx, claims.ID, ttl); err != nil {
		return apperr.Store("token revoke", err)
	}
	return nil
}

// Verify validates a bearer token, rejects revoked ones and returns
// the user id it carries.
func (s *AuthService) Verify(ctx context.Context, rawToken string) (int64, error) {
	claims, err := s.parse(rawToken)
	if err != nil {
		return 0, err
	}
	revoked, err := s.tokens().IsRevoked(ctx, claims.ID)
	if err != nil {
		return 0, apperr.Store("token revocation check", err)
	}
	if revoked {
		return 0, apperr.ErrUnauthenticated
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, apperr.ErrUnauthenticated
	}
	return userID, nil
}

func (s *AuthService) parse(rawToken string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.Auth.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, apperr.ErrUnauthenticated
	}
	if claims.ExpiresAt == nil || claims.ID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	return claims, nil
}
