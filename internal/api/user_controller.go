package api

import (
	"encoding/json"
	"net/http"

	appconsts "github.com/taskdeck/taskdeck/application/consts"
	"github.com/taskdeck/taskdeck/application/core"
	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/consts"
	"github.com/taskdeck/taskdeck/internal/service"
)

type UserController struct {
	*core.BaseComponent
	AuthSvc *service.AuthService `infra:"dep:auth_service"`

	env string
}

func NewUserController(env string) *UserController {
	return &UserController{
		BaseComponent: core.NewBaseComponent(consts.COMP_CTRL_USER, appconsts.COMPONENT_LOGGING),
		env:           env,
	}
}

func (uc *UserController) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(r.Context(), w, uc.env, err)
}

// register creates an account. The response carries no credential
// material, only the public profile.
func (uc *UserController) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uc.fail(w, r, apperr.Validation([]string{"request body must be valid JSON"}))
		return
	}
	u, err := uc.AuthSvc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		uc.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"name": u.Name, "email": u.Email})
}

func (uc *UserController) logon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uc.fail(w, r, apperr.Validation([]string{"request body must be valid JSON"}))
		return
	}
	token, err := uc.AuthSvc.Logon(r.Context(), req.Email, req.Password)
	if err != nil {
		uc.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}

// logoff revokes the presented token; it requires one, like every
// task route.
func (uc *UserController) logoff(w http.ResponseWriter, r *http.Request) {
	if _, err := CurrentUser(r.Context()); err != nil {
		uc.fail(w, r, err)
		return
	}
	token := bearerToken(r)
	if token == "" {
		uc.fail(w, r, apperr.ErrUnauthenticated)
		return
	}
	if err := uc.AuthSvc.Logoff(r.Context(), token); err != nil {
		uc.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revoked": true})
}
