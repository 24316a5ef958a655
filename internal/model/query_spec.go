package model

import "github.com/taskdeck/taskdeck/internal/consts"

// QuerySpec is the validated, typed form of a task listing request.
// OwnerID always comes from the authenticated identity, never from
// client input. SortColumn and Columns hold storage column names that
// already passed the allow-list in internal/query; nothing here is raw
// client text.
type QuerySpec struct {
	OwnerID   int64
	Search    string          // case-insensitive substring on title, "" = off
	Priority  consts.Priority // "" = no filter
	Completed *bool           // nil = no filter

	SortColumn string
	SortOrder  string // "asc" | "desc"

	Fields  []string // API field names to return; empty = default set
	Columns []string // storage columns to select, user_id always present

	Page  int
	Limit int
}

func (s *QuerySpec) Offset() int { return (s.Page - 1) * s.Limit }

// Page is the pagination envelope returned alongside list results.
type Page struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int64 `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

func NewPage(page, limit int, total int64) Page {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return Page{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: int64(page)*int64(limit) < total,
		HasPrev: page > 1,
	}
}
