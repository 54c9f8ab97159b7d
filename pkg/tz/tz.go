package tz

import "time"

// Berlin is the Europe/Berlin location (CET/CEST with automatic DST). Event
// years and all user-facing dates are interpreted in it.
var Berlin *time.Location

func init() {
	var err error
	Berlin, err = time.LoadLocation("Europe/Berlin")
	if err != nil {
		panic("tz: load Europe/Berlin: " + err.Error())
	}
}

// FormatDateTime renders t in Berlin time as "02.01.2006 15:04", or "" for
// the zero time.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Berlin).Format("02.01.2006 15:04")
}

// FormatDate renders the Berlin calendar day of t.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Berlin).Format("02.01.2006")
}
