package contextutils

import (
	"time"

	"reportdesk/internal/models"
)

// storedTimestampLayouts are the accepted layouts for the created_at column.
// The canonical layout comes first; the others cover rows inherited from
// earlier tooling that wrote microseconds or a space separator.
var storedTimestampLayouts = []string{
	models.TimestampLayout,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

// ParseStoredTimestamp parses a created_at value as stored in the database.
// Returns ErrInvalidFormat when the text matches none of the accepted layouts.
func ParseStoredTimestamp(s string) (time.Time, error) {
	for _, layout := range storedTimestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, NewAppError(ErrorCodeInvalidFormat, SeverityWarn, "Invalid format", "unrecognized timestamp: "+s)
}

// FormatStoredTimestamp renders a timestamp in the storage layout, second
// precision, local time.
func FormatStoredTimestamp(t time.Time) string {
	return t.Format(models.TimestampLayout)
}
