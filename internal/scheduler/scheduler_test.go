package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mkrivosheev/taskgram/internal/conf"
	"github.com/mkrivosheev/taskgram/internal/db"
	"github.com/mkrivosheev/taskgram/internal/errs"
	"github.com/mkrivosheev/taskgram/internal/model"
	"github.com/mkrivosheev/taskgram/internal/notify"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type sentMsg struct {
	chatID string
	text   string
}

type fakeGateway struct {
	mu   sync.Mutex
	sent []sentMsg
	fail error
}

func (f *fakeGateway) SendText(chatID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, sentMsg{chatID: chatID, text: text})
	return nil
}

func (f *fakeGateway) SendPhoto(chatID, photoRef, caption string) error {
	return f.SendText(chatID, caption)
}

func (f *fakeGateway) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeGateway) countFor(chatID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.sent {
		if m.chatID == chatID {
			n++
		}
	}
	return n
}

func setup(t *testing.T, now time.Time) (*Scheduler, *fakeGateway) {
	t.Helper()
	require.NoError(t, db.Init(conf.Database{
		Type: "sqlite3",
		DSN:  filepath.Join(t.TempDir(), "test.db"),
	}))
	gw := &fakeGateway{}
	s := New(gw, notify.NewResolver(), conf.Scheduler{
		TickInterval: time.Hour,
		ErrorBackoff: time.Minute,
		SendInterval: time.Millisecond,
	})
	s.SetNow(func() time.Time { return now })
	return s, gw
}

func mustUser(t *testing.T, chatID, role string) *model.User {
	t.Helper()
	user, err := db.GetOrCreateUser(chatID, "user-"+chatID)
	require.NoError(t, err)
	if role != model.RoleEmployee {
		require.NoError(t, db.SetUserRole(chatID, role))
		user, err = db.GetUserByChatID(chatID)
		require.NoError(t, err)
	}
	return user
}

func mustTask(t *testing.T, creator *model.User, assignee *uint, status model.TaskStatus, due time.Time) *model.Task {
	t.Helper()
	task := &model.Task{
		Title:      "report",
		Priority:   model.PriorityHigh,
		Status:     status,
		DueAt:      &due,
		AssigneeID: assignee,
		CreatorID:  creator.ID,
	}
	require.NoError(t, db.CreateTask(task))
	return task
}

// noon keeps every scan far away from the default 22:00-08:00 quiet hours.
var noon = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func TestEightHourReminderIsDeduped(t *testing.T) {
	s, gw := setup(t, noon)
	admin := mustUser(t, "1", model.RoleAdmin)
	u1 := mustUser(t, "2", model.RoleEmployee)
	task := mustTask(t, admin, &u1.ID, model.StatusInProgress, noon.Add(8*time.Hour))

	require.NoError(t, s.Scan(context.Background()))
	require.Equal(t, 1, gw.countFor(u1.ChatID))

	logged, err := db.HasNotificationLog(task.ID, model.Reminder8h)
	require.NoError(t, err)
	require.True(t, logged)

	// one minute later the task is still inside the window, but the log
	// row suppresses a resend, and no other milestone fires either
	s.SetNow(func() time.Time { return noon.Add(time.Minute) })
	require.NoError(t, s.Scan(context.Background()))
	require.Equal(t, 1, gw.count())

	for _, kind := range []model.NotificationKind{model.Reminder4h, model.ReminderOverdue} {
		logged, err := db.HasNotificationLog(task.ID, kind)
		require.NoError(t, err)
		require.False(t, logged)
	}
}

func TestOneHourReminderFiresEveryTick(t *testing.T) {
	s, gw := setup(t, noon)
	admin := mustUser(t, "1", model.RoleAdmin)
	u1 := mustUser(t, "2", model.RoleEmployee)
	task := mustTask(t, admin, &u1.ID, model.StatusInProgress, noon.Add(45*time.Minute))

	require.NoError(t, s.Scan(context.Background()))
	require.NoError(t, s.Scan(context.Background()))
	s.SetNow(func() time.Time { return noon.Add(10 * time.Minute) })
	require.NoError(t, s.Scan(context.Background()))
	require.Equal(t, 3, gw.countFor(u1.ChatID))

	logged, err := db.HasNotificationLog(task.ID, model.Reminder1h)
	require.NoError(t, err)
	require.False(t, logged)
}

func TestOverdueDualCastsToAssigneeAndAdmins(t *testing.T) {
	s, gw := setup(t, noon)
	admin := mustUser(t, "1", model.RoleAdmin)
	admin2 := mustUser(t, "3", model.RoleAdmin)
	u1 := mustUser(t, "2", model.RoleEmployee)
	task := mustTask(t, admin, &u1.ID, model.StatusInProgress, noon.Add(-2*time.Hour))

	require.NoError(t, s.Scan(context.Background()))
	require.Equal(t, 1, gw.countFor(u1.ChatID))
	require.Equal(t, 1, gw.countFor(admin.ChatID))
	require.Equal(t, 1, gw.countFor(admin2.ChatID))

	// one shared dedup row for the whole logical notification
	logged, err := db.HasNotificationLog(task.ID, model.ReminderOverdue)
	require.NoError(t, err)
	require.True(t, logged)

	require.NoError(t, s.Scan(context.Background()))
	require.Equal(t, 3, gw.count())
}

func TestFailedSendLeavesNoDedupRow(t *testing.T) {
	s, gw := setup(t, noon)
	admin := mustUser(t, "1", model.RoleAdmin)
	u1 := mustUser(t, "2", model.RoleEmployee)
	task := mustTask(t, admin, &u1.ID, model.StatusInProgress, noon.Add(8*time.Hour))

	gw.fail = errors.Wrap(errs.ErrDelivery, "chat unreachable")
	require.NoError(t, s.Scan(context.Background()))
	require.Equal(t, 0, gw.count())
	logged, err := db.HasNotificationLog(task.ID, model.Reminder8h)
	require.NoError(t, err)
	require.False(t, logged)

	// the reminder retries on the next tick once delivery recovers
	gw.fail = nil
	require.NoError(t, s.Scan(context.Background()))
	require.Equal(t, 1, gw.countFor(u1.ChatID))
	logged, err = db.HasNotificationLog(task.ID, model.Reminder8h)
	require.NoError(t, err)
	require.True(t, logged)
}

func TestQuietHoursSuppressReminders(t *testing.T) {
	lateEvening := time.Date(2025, 6, 2, 23, 30, 0, 0, time.UTC)
	s, gw := setup(t, lateEvening)
	admin := mustUser(t, "1", model.RoleAdmin)
	u1 := mustUser(t, "2", model.RoleEmployee)
	task := mustTask(t, admin, &u1.ID, model.StatusInProgress, lateEvening.Add(8*time.Hour))

	// 23:30 sits in the 22:00-08:00 window before midnight
	require.NoError(t, s.Scan(context.Background()))
	require.Equal(t, 0, gw.count())
	// a suppressed milestone writes no dedup row, so it can still fire
	// once quiet hours end
	logged, err := db.HasNotificationLog(task.ID, model.Reminder8h)
	require.NoError(t, err)
	require.False(t, logged)

	// 02:00 sits in the wrapped part of the window after midnight; keep
	// the task inside the 8h milestone by moving its due date along
	nightTime := time.Date(2025, 6, 3, 2, 0, 0, 0, time.UTC)
	require.NoError(t, db.UpdateStatus(task.ID, model.StatusInProgress, map[string]any{"due_at": nightTime.Add(8 * time.Hour)}))
	s.SetNow(func() time.Time { return nightTime })
	require.NoError(t, s.Scan(context.Background()))
	require.Equal(t, 0, gw.count())

	// 09:00 is outside quiet hours: the same milestone finally delivers
	morning := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	require.NoError(t, db.UpdateStatus(task.ID, model.StatusInProgress, map[string]any{"due_at": morning.Add(8 * time.Hour)}))
	s.SetNow(func() time.Time { return morning })
	require.NoError(t, s.Scan(context.Background()))
	require.Equal(t, 1, gw.countFor(u1.ChatID))
}

func TestDisabledKindIsSkipped(t *testing.T) {
	s, gw := setup(t, noon)
	admin := mustUser(t, "1", model.RoleAdmin)
	u1 := mustUser(t, "2", model.RoleEmployee)
	mustTask(t, admin, &u1.ID, model.StatusInProgress, noon.Add(8*time.Hour))

	require.NoError(t, db.UpdatePreference(u1.ID, "enable_8h", false))
	require.NoError(t, s.Scan(context.Background()))
	require.Equal(t, 0, gw.count())
}

func TestUnassignedTaskGetsNoReminder(t *testing.T) {
	s, gw := setup(t, noon)
	admin := mustUser(t, "1", model.RoleAdmin)
	mustTask(t, admin, nil, model.StatusPending, noon.Add(8*time.Hour))

	require.NoError(t, s.Scan(context.Background()))
	require.Equal(t, 0, gw.count())
}
