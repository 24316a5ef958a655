package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/application/components/http_server"
	"github.com/taskdeck/taskdeck/application/core"
	bizConsts "github.com/taskdeck/taskdeck/internal/consts"
	"github.com/taskdeck/taskdeck/internal/service"
)

func init() {
	http_server.RegisterRoutes(func(r chi.Router, c *core.Container) error {
		compTask, err := c.Resolve(bizConsts.COMP_CTRL_TASK)
		if err != nil {
			return err
		}
		taskCtrl, ok := compTask.(*TaskController)
		if !ok {
			return fmt.Errorf("task_ctrl type assertion failed")
		}
		compUser, err := c.Resolve(bizConsts.COMP_CTRL_USER)
		if err != nil {
			return err
		}
		userCtrl, ok := compUser.(*UserController)
		if !ok {
			return fmt.Errorf("user_ctrl type assertion failed")
		}
		compAuth, err := c.Resolve(bizConsts.COMP_SVC_AUTH)
		if err != nil {
			return err
		}
		authSvc, ok := compAuth.(*service.AuthService)
		if !ok {
			return fmt.Errorf("auth_service type assertion failed")
		}

		authMw := Authenticate(authSvc, taskCtrl.env)

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeErr(w, http.StatusNotFound, "route not found")
		})

		r.Route("/api/users", func(r chi.Router) {
			r.Post("/", userCtrl.register)
			r.Post("/logon", userCtrl.logon)
			r.With(authMw).Post("/logoff", userCtrl.logoff)
		})

		r.Route("/api/tasks", func(r chi.Router) {
			r.Use(authMw)

			getID := func(r *http.Request) int64 {
				var id int64
				_, _ = fmt.Sscanf(chi.URLParam(r, "id"), "%d", &id)
				return id
			}

			r.Get("/", taskCtrl.listTasks)
			r.Post("/", taskCtrl.createTask)
			r.Post("/bulk", taskCtrl.bulkCreateTasks)
			r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) { taskCtrl.getTask(w, req, getID(req)) })
			r.Patch("/{id}", func(w http.ResponseWriter, req *http.Request) { taskCtrl.updateTask(w, req, getID(req)) })
			r.Delete("/{id}", func(w http.ResponseWriter, req *http.Request) { taskCtrl.deleteTask(w, req, getID(req)) })
		})

		return nil
	})
}
