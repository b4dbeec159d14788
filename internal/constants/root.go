package constants

const (
	// AppName is the application identifier used for config paths and logging
	AppName = "restwell"

	// ConfigFileName is the reminder configuration file inside the config directory
	ConfigFileName = "reminder_config.json"

	// DBFileName is the default database file inside the config directory
	DBFileName = "restwell.db"

	// LockfileName is the single-instance lockfile inside the config directory
	LockfileName = "restwell.lock"
)
