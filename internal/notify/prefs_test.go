package notify

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mkrivosheev/taskgram/internal/conf"
	"github.com/mkrivosheev/taskgram/internal/db"
	"github.com/mkrivosheev/taskgram/internal/errs"
	"github.com/mkrivosheev/taskgram/internal/model"
	"github.com/stretchr/testify/require"
)

func setupResolver(t *testing.T) (*Resolver, *model.User) {
	t.Helper()
	require.NoError(t, db.Init(conf.Database{
		Type: "sqlite3",
		DSN:  filepath.Join(t.TempDir(), "test.db"),
	}))
	user, err := db.GetOrCreateUser("100", "worker")
	require.NoError(t, err)
	return NewResolver(), user
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func TestInQuietHoursWrapsPastMidnight(t *testing.T) {
	pref := &model.NotificationPreference{QuietStart: "22:00", QuietEnd: "08:00"}

	cases := []struct {
		now   time.Time
		quiet bool
	}{
		{at(23, 30), true},
		{at(2, 0), true},
		{at(22, 0), true},  // start is inclusive
		{at(8, 0), false},  // end is exclusive
		{at(9, 0), false},
		{at(21, 59), false},
	}
	for _, c := range cases {
		quiet, err := InQuietHours(pref, c.now)
		require.NoError(t, err)
		require.Equal(t, c.quiet, quiet, "at %s", c.now.Format("15:04"))
	}
}

func TestInQuietHoursSameDayWindow(t *testing.T) {
	pref := &model.NotificationPreference{QuietStart: "13:00", QuietEnd: "14:00"}

	quiet, err := InQuietHours(pref, at(13, 30))
	require.NoError(t, err)
	require.True(t, quiet)

	quiet, err = InQuietHours(pref, at(14, 0))
	require.NoError(t, err)
	require.False(t, quiet)

	quiet, err = InQuietHours(pref, at(12, 59))
	require.NoError(t, err)
	require.False(t, quiet)
}

func TestInQuietHoursRejectsMalformedValue(t *testing.T) {
	pref := &model.NotificationPreference{QuietStart: "25:99", QuietEnd: "08:00"}
	_, err := InQuietHours(pref, at(12, 0))
	require.Error(t, err)
}

func TestDefaultsEnableEverything(t *testing.T) {
	r, user := setupResolver(t)
	pref, err := r.GetOrCreate(user.ID)
	require.NoError(t, err)
	require.True(t, pref.Enable8h)
	require.True(t, pref.Enable4h)
	require.True(t, pref.Enable1h)
	require.True(t, pref.EnableOverdue)
	require.True(t, pref.EnableComment)
	require.Equal(t, "22:00", pref.QuietStart)
	require.Equal(t, "08:00", pref.QuietEnd)
}

func TestShouldSendHonorsKindToggle(t *testing.T) {
	r, user := setupResolver(t)

	ok, err := r.ShouldSend(user.ID, model.Reminder4h, at(12, 0))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, r.Update(user.ID, "enable_4h", false))

	ok, err = r.ShouldSend(user.ID, model.Reminder4h, at(12, 0))
	require.NoError(t, err)
	require.False(t, ok)

	// other kinds stay unaffected
	ok, err = r.ShouldSend(user.ID, model.Reminder8h, at(12, 0))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestShouldSendSuppressesDuringQuietHours(t *testing.T) {
	r, user := setupResolver(t)

	ok, err := r.ShouldSend(user.ID, model.Reminder1h, at(23, 30))
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = r.ShouldSend(user.ID, model.Reminder1h, at(9, 0))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUpdateRejectsUnknownField(t *testing.T) {
	r, user := setupResolver(t)
	require.Error(t, r.Update(user.ID, "role", "admin"))
}

func TestUpdateRejectsMalformedQuietHours(t *testing.T) {
	r, user := setupResolver(t)

	err := r.Update(user.ID, "quiet_start", "banana")
	require.ErrorIs(t, err, errs.ErrValidation)
	err = r.Update(user.ID, "quiet_end", "25:99")
	require.ErrorIs(t, err, errs.ErrValidation)
	err = r.Update(user.ID, "quiet_start", 7)
	require.ErrorIs(t, err, errs.ErrValidation)

	// the stored window is untouched and reminders keep flowing
	pref, err := r.GetOrCreate(user.ID)
	require.NoError(t, err)
	require.Equal(t, "22:00", pref.QuietStart)
	require.Equal(t, "08:00", pref.QuietEnd)

	ok, err := r.ShouldSend(user.ID, model.Reminder8h, at(12, 0))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLastWriteWins(t *testing.T) {
	r, user := setupResolver(t)
	require.NoError(t, r.Update(user.ID, "quiet_start", "21:00"))
	require.NoError(t, r.Update(user.ID, "quiet_start", "20:00"))

	pref, err := r.GetOrCreate(user.ID)
	require.NoError(t, err)
	require.Equal(t, "20:00", pref.QuietStart)
}
