package format

import (
	"time"
)

const (
	filetimeOffset = 116444736000000000 // difference between FILETIME epoch and Unix epoch in 100ns units
	filetimeUnit   = 100                // FILETIME units are 100ns
)

// FiletimeToTime converts a Windows FILETIME value (100ns ticks since
// 1601-01-01, little-endian on disk) to time.Time.
func FiletimeToTime(v uint64) time.Time {
	if v <= filetimeOffset {
		return time.Unix(0, 0).UTC()
	}
	ns := int64((v - filetimeOffset) * filetimeUnit)
	sec := ns / int64(time.Second)
	nsec := ns % int64(time.Second)
	return time.Unix(sec, nsec).UTC()
}

// TimeToFiletime is the inverse of FiletimeToTime.
func TimeToFiletime(t time.Time) uint64 {
	unixNS := t.UnixNano()
	return uint64(unixNS/int64(filetimeUnit)) + filetimeOffset
}

// time32Epoch is 1980-01-01T00:00:00Z expressed as a Unix timestamp, the
// epoch used by the OneStore 32-bit Time32 field.
const time32Epoch = 315532800

// Time32ToTime converts a Time32 value (seconds since 1980-01-01) to time.Time.
func Time32ToTime(v uint32) time.Time {
	return time.Unix(time32Epoch+int64(v), 0).UTC()
}

// TimeToTime32 is the inverse of Time32ToTime.
func TimeToTime32(t time.Time) uint32 {
	sec := t.Unix() - time32Epoch
	if sec < 0 {
		return 0
	}
	return uint32(sec)
}
