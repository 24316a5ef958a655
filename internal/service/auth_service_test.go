package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/taskdeck/internal/apperr"
	bizConfig "github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/model"
)

type stubUserDao struct {
	users  map[string]*model.User
	nextID int64
}

func newStubUserDao() *stubUserDao {
	return &stubUserDao{users: make(map[string]*model.User)}
}

func (s *stubUserDao) Insert(ctx context.Context, u *model.User) error {
	s.nextID++
	u.ID = s.nextID
	copied := *u
	s.users[u.Email] = &copied
	return nil
}

func (s *stubUserDao) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := s.users[strings.ToLower(email)]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, apperr.ErrNotFound
}

func (s *stubUserDao) GetByID(ctx context.Context, id int64) (*model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func newTestAuthService() (*AuthService, *stubUserDao) {
	da := newStubUserDao()
	s := NewAuthService()
	s.UserDao = da
	s.cfg = &bizConfig.BizConfig{Auth: bizConfig.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}}
	return s, da
}

func TestRegisterLogonVerify(t *testing.T) {
	s, _ := newTestAuthService()
	ctx := context.Background()

	u, err := s.Register(ctx, "Ada", "Ada@Example.COM", "hunter22")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("email must be stored lowercase, got %q", u.Email)
	}
	if u.HashedPassword == "hunter22" {
		t.Fatalf("password must be hashed")
	}

	token, err := s.Logon(ctx, "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("logon failed: %v", err)
	}
	userID, err := s.Verify(ctx, token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if userID != u.ID {
		t.Fatalf("expected user %d, got %d", u.ID, userID)
	}
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newTestAuthService()
	ctx := context.Background()

	_, err := s.Register(ctx, "", "not-an-email", "123")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Problems) != 3 {
		t.Fatalf("expected 3 problems, got %v", ve.Problems)
	}

	if _, err := s.Register(ctx, "Ada", "ada@example.com", "hunter22"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := s.Register(ctx, "Ada Again", "ADA@example.com", "hunter22"); err == nil {
		t.Fatalf("duplicate email must be rejected")
	}
}

func TestLogonFailsClosed(t *testing.T) {
	s, _ := newTestAuthService()
	ctx := context.Background()
	if _, err := s.Register(ctx, "Ada", "ada@example.com", "hunter22"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := s.Logon(ctx, "nobody@example.com", "hunter22"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("unknown email must be unauthenticated, got %v", err)
	}
	if _, err := s.Logon(ctx, "ada@example.com", "wrong"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("wrong password must be unauthenticated, got %v", err)
	}
}

func TestLogoffRevokesToken(t *testing.T) {
	s, _ := newTestAuthService()
	ctx := context.Background()
	if _, err := s.Register(ctx, "Ada", "ada@example.com", "hunter22"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	token, err := s.Logon(ctx, "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("logon failed: %v", err)
	}
	if _, err := s.Verify(ctx, token); err != nil {
		t.Fatalf("verify before logoff failed: %v", err)
	}
	if err := s.Logoff(ctx, token); err != nil {
		t.Fatalf("logoff failed: %v", err)
	}
	if _, err := s.Verify(ctx, token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("revoked token must be unauthenticated, got %v", err)
	}
}

func TestVerifyRejectsGarbageAndForeignTokens(t *testing.T) {
	s, _ := newTestAuthService()
	ctx := context.Background()
	if _, err := s.Verify(ctx, "not.a.token"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("garbage token must be unauthenticated, got %v", err)
	}

	other, _ := newTestAuthService()
	other.cfg.Auth.JWTSecret = "different-secret"
	if _, err := other.Register(ctx, "Eve", "eve@example.com", "hunter22"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	token, err := other.Logon(ctx, "eve@example.com", "hunter22")
	if err != nil {
		t.Fatalf("logon failed: %v", err)
	}
	if _, err := s.Verify(ctx, token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("token signed with another secret must be rejected, got %v", err)
	}
}
