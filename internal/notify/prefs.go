package notify

import (
	"time"

	"github.com/mkrivosheev/taskgram/internal/db"
	"github.com/mkrivosheev/taskgram/internal/errs"
	"github.com/mkrivosheev/taskgram/internal/model"
	"github.com/pkg/errors"
)

// Resolver answers "may this user be notified right now with this kind".
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// GetOrCreate returns the user's preferences, lazily creating defaults.
func (r *Resolver) GetOrCreate(userID uint) (*model.NotificationPreference, error) {
	return db.GetOrCreatePreferences(userID)
}

// Update writes a single preference field, last write wins. Quiet-hours
// values are validated up front: a malformed window would make every
// later ShouldSend evaluation fail and silently mute the user.
func (r *Resolver) Update(userID uint, field string, value any) error {
	if field == "quiet_start" || field == "quiet_end" {
		s, ok := value.(string)
		if !ok {
			return errs.Validationf("quiet-hours value must be an HH:MM string")
		}
		if _, err := minuteOfDay(s); err != nil {
			return errs.Validationf("quiet-hours value %q is not HH:MM", s)
		}
	}
	return db.UpdatePreference(userID, field, value)
}

// ShouldSend checks the kind toggle and the quiet-hours window. A
// suppressed notification is dropped for this tick, never queued.
func (r *Resolver) ShouldSend(userID uint, kind model.NotificationKind, now time.Time) (bool, error) {
	pref, err := r.GetOrCreate(userID)
	if err != nil {
		return false, err
	}
	if !pref.Enabled(kind) {
		return false, nil
	}
	quiet, err := InQuietHours(pref, now)
	if err != nil {
		return false, err
	}
	return !quiet, nil
}

// IsQuietHours reports whether now falls inside the user's quiet window.
func (r *Resolver) IsQuietHours(userID uint, now time.Time) (bool, error) {
	pref, err := r.GetOrCreate(userID)
	if err != nil {
		return false, err
	}
	return InQuietHours(pref, now)
}

// InQuietHours evaluates the configured window against now's local
// time-of-day. start > end means the window wraps past midnight:
// [start, 24:00) union [00:00, end).
func InQuietHours(pref *model.NotificationPreference, now time.Time) (bool, error) {
	start, err := minuteOfDay(pref.QuietStart)
	if err != nil {
		return false, err
	}
	end, err := minuteOfDay(pref.QuietEnd)
	if err != nil {
		return false, err
	}
	cur := now.Hour()*60 + now.Minute()
	if start > end {
		return cur >= start || cur < end, nil
	}
	return cur >= start && cur < end, nil
}

func minuteOfDay(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid quiet-hours value %q", hhmm)
	}
	return t.Hour()*60 + t.Minute(), nil
}
