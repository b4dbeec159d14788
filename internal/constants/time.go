package constants

const (
	// DateFormat is the standard date format (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format (HH:MM)
	TimeFormat = "15:04"

	// ArchiveStampFormat is the date stamp used in archive artifact filenames
	ArchiveStampFormat = "20060102"
)
