package constants

// SessionState represents the current state of the TUI application
type SessionState int

const (
	StateToday SessionState = iota
	StateHistory
	StateMonths
	StateAddHabit
	StateEditHabit
	StateConfirmDelete
	StateImport
)
