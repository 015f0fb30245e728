package archive

import (
	"errors"
	"strings"
	"time"
)

const (
	// Ext is the file extension of every archive this agent produces.
	Ext = ".zip"

	// stampLayout is the timestamp segment embedded in archive names,
	// second resolution, naive local time. Two archives created within
	// the same second for the same project collide; the later write wins.
	stampLayout = "20060102_150405"
)

// ErrNameParse reports a file name whose trailing segment is not a valid
// archive timestamp. Callers must skip such files, never delete them.
var ErrNameParse = errors.New("archive: name has no parseable timestamp")

// Name builds the on-disk archive file name for a project snapshot
// taken at t: "<project lowercased>_<YYYYMMDD_HHMMSS>.zip".
func Name(project string, t time.Time) string {
	return strings.ToLower(project) + "_" + t.Format(stampLayout) + Ext
}

// ParseName extracts the creation time from an archive file name.
// The trailing 15 characters before the extension must match
// YYYYMMDD_HHMMSS exactly; anything else yields ErrNameParse.
func ParseName(name string) (time.Time, error) {
	if !strings.HasSuffix(name, Ext) {
		return time.Time{}, ErrNameParse
	}
	base := strings.TrimSuffix(name, Ext)
	if len(base) < len(stampLayout) {
		return time.Time{}, ErrNameParse
	}
	stamp := base[len(base)-len(stampLayout):]
	t, err := time.ParseInLocation(stampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, ErrNameParse
	}
	return t, nil
}
