package conf

import "time"

var location = time.Local

// Location returns the deployment time zone. All due-date comparisons and
// quiet-hours checks use this zone, never the host zone.
func Location() *time.Location {
	return location
}

// SetLocation overrides the deployment time zone. Intended for tests.
func SetLocation(loc *time.Location) {
	if loc != nil {
		location = loc
	}
}

// Now returns the current time in the deployment time zone.
func Now() time.Time {
	return time.Now().In(location)
}
