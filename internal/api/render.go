package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/taskdeck/taskdeck/application/components/logging"
	appconsts "github.com/taskdeck/taskdeck/application/consts"
	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeError is the single boundary error handler: it maps the domain
// taxonomy to status codes, lists validation problems, and redacts
// store failures outside development.
func writeError(ctx context.Context, w http.ResponseWriter, env string, err error) {
	status := apperr.HTTPStatus(err)
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, status, map[string]any{"error": "validation failed", "problems": ve.Problems})
		return
	}
	if status == http.StatusInternalServerError {
		logging.Error(ctx, fmt.Sprintf("request failed: %v", err))
		msg := "internal server error"
		if env == appconsts.ENV_DEVELOPMENT {
			msg = err.Error()
		}
		writeErr(w, status, msg)
		return
	}
	writeErr(w, status, err.Error())
}

// shapeTask projects a task onto the requested fields. The owner id
// appears only when the caller asked for it explicitly.
func shapeTask(t *model.Task, fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		switch f {
		case "id":
			out["id"] = t.ID
		case "title":
			out["title"] = t.Title
		case "isCompleted":
			out["isCompleted"] = t.IsCompleted
		case "priority":
			out["priority"] = t.Priority
		case "createdAt":
			out["createdAt"] = t.CreatedAt
		case "userId":
			out["userId"] = t.UserID
		}
	}
	return out
}

func shapeTasks(list []*model.Task, fields []string) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, t := range list {
		out = append(out, shapeTask(t, fields))
	}
	return out
}
