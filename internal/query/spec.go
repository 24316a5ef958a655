package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/consts"
	"github.com/taskdeck/taskdeck/internal/model"
)

// fieldColumns is the closed allow-list mapping API field names to
// storage columns. Client strings never reach the query builder
// except through this map.
var fieldColumns = map[string]string{
	"id":          "id",
	"title":       "title",
	"isCompleted": "is_completed",
	"priority":    "priority",
	"createdAt":   "created_at",
	"userId":      "user_id",
}

// default projection leaves the owner column out of the payload; the
// column itself is still selected for scoping.
var defaultFields = []string{"id", "title", "isCompleted", "priority", "createdAt"}

// DefaultFields returns a copy of the default projection.
func DefaultFields() []string {
	out := make([]string, len(defaultFields))
	copy(out, defaultFields)
	return out
}

// Build parses raw query parameters into a QuerySpec scoped to
// ownerID. Pagination is lenient (bad values clamp to defaults); the
// search term is strict; priority/completed filters drop invalid
// values silently. All problems are collected in one pass, not
// fail-fast.
func Build(ownerID int64, q url.Values) (*model.QuerySpec, error) {
	spec := &model.QuerySpec{
		OwnerID:    ownerID,
		Page:       consts.DEFAULT_PAGE,
		Limit:      consts.DEFAULT_LIMIT,
		SortColumn: "created_at",
		SortOrder:  "desc",
	}
	var problems []string

	if v := strings.TrimSpace(q.Get("page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			spec.Page = n
		}
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= consts.MAX_LIMIT {
			spec.Limit = n
		}
	}

	if v := strings.TrimSpace(q.Get("q")); v != "" {
		if len([]rune(v)) < consts.MIN_SEARCH_LEN {
			problems = append(problems, fmt.Sprintf("search query must be at least %d characters long", consts.MIN_SEARCH_LEN))
		} else {
			spec.Search = v
		}
	}

	sortBy := strings.TrimSpace(q.Get("sort_by"))
	sortOrder := strings.ToLower(strings.TrimSpace(q.Get("sort_order")))
	if sortBy != "" {
		if col, ok := fieldColumns[sortBy]; ok {
			spec.SortColumn = col
			if sortOrder == "" && col != "created_at" {
				spec.SortOrder = "asc"
			}
		} else {
			problems = append(problems, fmt.Sprintf("unknown sort field %q", sortBy))
		}
	}
	switch sortOrder {
	case "":
	case "asc", "desc":
		spec.SortOrder = sortOrder
	default:
		problems = append(problems, fmt.Sprintf("sort order must be \"asc\" or \"desc\", got %q", sortOrder))
	}

	if raw := strings.TrimSpace(q.Get("fields")); raw != "" {
		seen := make(map[string]bool)
		var fields, columns []string
		for _, f := range strings.Split(raw, ",") {
			f = strings.TrimSpace(f)
			if f == "" || seen[f] {
				continue
			}
			col, ok := fieldColumns[f]
			if !ok {
				problems = append(problems, fmt.Sprintf("unknown field %q", f))
				continue
			}
			seen[f] = true
			fields = append(fields, f)
			columns = append(columns, col)
		}
		if len(fields) > 0 {
			// owner column is always selected so scoping and shaping
			// can see it, even when the client did not ask for it
			if !seen["userId"] {
				columns = append(columns, "user_id")
			}
			spec.Fields = fields
			spec.Columns = columns
		}
	}
	if spec.Fields == nil {
		spec.Fields = DefaultFields()
		spec.Columns = []string{"id", "title", "is_completed", "priority", "created_at", "user_id"}
	}

	if v := strings.ToLower(strings.TrimSpace(q.Get("priority"))); v != "" && consts.ValidPriority(v) {
		spec.Priority = consts.Priority(v)
	}
	if v := strings.TrimSpace(q.Get("completed")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			spec.Completed = &b
		}
	}

	if err := apperr.Validation(problems); err != nil {
		return nil, err
	}
	return spec, nil
}
