package constants

const (
	// Settings Keys
	SettingLastResetDate = "last_reset_date"
	SettingAppVersion    = "app_version"

	// Default Settings Values
	DefaultEscalationThreshold     = 2
	DefaultEscalationWindowHours   = 2
	DefaultDataRetentionDays       = 30
	DefaultMotivationalCooldownMin = 30
	DefaultAutoCloseSeconds        = 45

	// DefaultEncouragementWindowMin is the trailing window inspected when
	// deciding whether a completion deserves encouragement.
	DefaultEncouragementWindowMin = 60

	// DailyRolloverTime is the low-traffic time of day at which the rollover
	// check runs, in addition to the opportunistic check at startup.
	DailyRolloverTime = "00:01"
)

// DefaultBusyDelayOptions are the delay choices (minutes) offered on a busy response.
var DefaultBusyDelayOptions = []int{10, 15, 30}
