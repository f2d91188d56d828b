package store

import "time"

// RefreshState tracks the last background refresh of one report kind.
type RefreshState struct {
	Kind          string
	LastAttemptAt time.Time
	LastSuccessAt *time.Time
	LastError     *string
}
