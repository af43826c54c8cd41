package store

import (
	"time"

	"github.com/joshuapare/onekit/internal/format"
)

// FiletimeToTime converts a FILETIME-64 value (100ns ticks since 1601-01-01)
// to time.Time.
func FiletimeToTime(v uint64) time.Time { return format.FiletimeToTime(v) }

// TimeToFiletime is the inverse of FiletimeToTime.
func TimeToFiletime(t time.Time) uint64 { return format.TimeToFiletime(t) }

// Time32ToTime converts a Time32 value (seconds since 1980-01-01) to time.Time.
func Time32ToTime(v uint32) time.Time { return format.Time32ToTime(v) }

// TimeToTime32 is the inverse of Time32ToTime.
func TimeToTime32(t time.Time) uint32 { return format.TimeToTime32(t) }

// ReadFiletime reads a FILETIME-64 value and converts it.
func (r *Reader) ReadFiletime() (time.Time, error) {
	v, err := r.U64()
	if err != nil {
		return time.Time{}, err
	}
	return FiletimeToTime(v), nil
}

// ReadTime32 reads a Time32 value and converts it.
func (r *Reader) ReadTime32() (time.Time, error) {
	v, err := r.U32()
	if err != nil {
		return time.Time{}, err
	}
	return Time32ToTime(v), nil
}
