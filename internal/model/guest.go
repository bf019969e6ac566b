// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package model

import "time"

// TimestampLayout is the ISO-8601 form used for created_at, always UTC with
// millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Attendance flags as persisted.
const (
	NotAttending = 0
	Attending    = 1
)

type Guest struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Attending int    `json:"attending"`
	CreatedAt string `json:"created_at"`
}

// NewGuest builds a guest record for an RSVP submitted at now. The id is the
// creation time in epoch milliseconds.
func NewGuest(name string, attending bool, now time.Time) *Guest {
	return &Guest{
		ID:        now.UnixMilli(),
		Name:      name,
		Attending: AttendingFlag(attending),
		CreatedAt: FormatTimestamp(now),
	}
}

func AttendingFlag(attending bool) int {
	if attending {
		return Attending
	}
	return NotAttending
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// RemoveGuest returns guests without any entry matching id. The input slice
// is left untouched.
func RemoveGuest(guests []*Guest, id int64) []*Guest {
	res := make([]*Guest, 0, len(guests))
	for _, g := range guests {
		if g.ID != id {
			res = append(res, g)
		}
	}
	return res
}
