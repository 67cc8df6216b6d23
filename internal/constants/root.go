package constants

import "time"

const (
	AppName            = "habitkeep"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/habitkeep"
	DefaultConfigPath  = "~/.config/habitkeep/config.yaml"
	DefaultDBPath      = "~/.config/habitkeep/habitkeep.db"
	Version            = "v0.3.0"

	// DateFormat is the calendar-day format used for every stored completion (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the wall-clock format used for trigger times (HH:MM)
	TimeFormat = "15:04"

	// Habit defaults
	DefaultTargetPerWeek = 4
	MinTargetPerWeek     = 1
	MaxTargetPerWeek     = 7

	// SortOrderLast is what pre-ordering rows default to before backfill.
	SortOrderLast = 2147483647

	// Window sizes, in days, counted back from and including today
	WeekWindowDays     = 7
	MonthWindowDays    = 30
	RecentWindowDays   = 3
	YearWindowMonths   = 12
	WidgetHistoryDots  = 6
	WidgetHabitsPerRow = 2

	// Morning reminder
	MorningTitle  = "Today's habit reminder"
	MorningHeader = "You have not completed the following habits:"

	// Evening summary
	EveningTitle  = "Today's habit summary"
	EveningHeader = "Completed today:"
	TargetMetTag  = " (weekly target met)"

	DefaultMorningTime = "06:00"
	DefaultEveningTime = "21:00"

	// Notify constants
	NotifierLockfileName   = "habitkeep-notifier.lock"
	NotificationDurationMs = 8000
	TrayAppIdentifier      = "com.julianstephens.habitkeep"
	TrayExecutablePrefix   = "habitkeep-tray"

	SenderTray   = "tray"
	SenderStdout = "stdout"

	// Storage
	DBBusyTimeoutMs = 5000
	WriteTimeout    = 10 * time.Second
)
