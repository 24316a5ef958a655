package consts

// Priority is the task priority enumeration stored as-is in the DB.
type Priority string

const (
	PRIORITY_LOW    Priority = "low"
	PRIORITY_MEDIUM Priority = "medium"
	PRIORITY_HIGH   Priority = "high"
)

func ValidPriority(p string) bool {
	switch Priority(p) {
	case PRIORITY_LOW, PRIORITY_MEDIUM, PRIORITY_HIGH:
		return true
	}
	return false
}

const (
	MAX_TITLE_LEN  = 255
	MAX_BULK_TASKS = 100

	DEFAULT_PAGE  = 1
	DEFAULT_LIMIT = 10
	MAX_LIMIT     = 100

	MIN_SEARCH_LEN = 2
)

// ShowPolicy controls single-record lookup scoping.
// SHOW_OWNER_SCOPED: compound-key lookup, a foreign id reads as absent.
// SHOW_GLOBAL: id-only lookup with an ownership check afterwards,
// foreign rows answer 403 and therefore leak existence.
type ShowPolicy string

const (
	SHOW_OWNER_SCOPED ShowPolicy = "owner_scoped"
	SHOW_GLOBAL       ShowPolicy = "global"
)
