package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/mkrivosheev/taskgram/internal/conf"
	"github.com/mkrivosheev/taskgram/internal/db"
	"github.com/mkrivosheev/taskgram/internal/errs"
	"github.com/mkrivosheev/taskgram/internal/gateway"
	"github.com/mkrivosheev/taskgram/internal/model"
	"github.com/mkrivosheev/taskgram/internal/notify"
	"github.com/mkrivosheev/taskgram/pkg/utils"
	"golang.org/x/time/rate"
)

// Scheduler scans active tasks on a fixed tick, classifies due-date
// proximity, filters through the preference resolver and dispatches
// reminders via the gateway. One broken task or unreachable user never
// stops the rest of the scan.
type Scheduler struct {
	gw       gateway.Gateway
	resolver *notify.Resolver
	now      func() time.Time
	tick     time.Duration
	backoff  time.Duration
	limiter  *rate.Limiter
}

func New(gw gateway.Gateway, resolver *notify.Resolver, cfg conf.Scheduler) *Scheduler {
	return &Scheduler{
		gw:       gw,
		resolver: resolver,
		now:      conf.Now,
		tick:     cfg.TickInterval,
		backoff:  cfg.ErrorBackoff,
		limiter:  rate.NewLimiter(rate.Every(cfg.SendInterval), 1),
	}
}

// SetNow pins the scheduler clock. Intended for tests.
func (s *Scheduler) SetNow(now func() time.Time) {
	s.now = now
}

// Run loops until ctx is cancelled. A failed scan shortens the next
// sleep to the error backoff instead of terminating.
func (s *Scheduler) Run(ctx context.Context) {
	utils.Log.Infof("notification scheduler started, tick %s", s.tick)
	for {
		sleep := s.tick
		if err := s.Scan(ctx); err != nil {
			utils.Log.Errorf("notification scan failed: %+v", err)
			sleep = s.backoff
		}
		select {
		case <-ctx.Done():
			utils.Log.Info("notification scheduler stopped")
			return
		case <-time.After(sleep):
		}
	}
}

// Scan evaluates every active task once. Per-task failures are logged
// and isolated; only a store failure loading the task set is returned.
func (s *Scheduler) Scan(ctx context.Context) error {
	tasks, err := db.GetActiveTasksWithDueDate()
	if err != nil {
		return err
	}
	now := s.now()
	sent := 0
	for i := range tasks {
		sent += s.processTask(ctx, &tasks[i], now)
	}
	utils.Log.Debugf("notification scan done: %d tasks considered, %d sends", len(tasks), sent)
	return nil
}

func (s *Scheduler) processTask(ctx context.Context, task *model.Task, now time.Time) int {
	sent := 0
	for _, kind := range Classify(*task.DueAt, now) {
		if Deduped(kind) {
			logged, err := db.HasNotificationLog(task.ID, kind)
			if err != nil {
				utils.Log.Errorf("dedup check for task %d %s: %+v", task.ID, kind, err)
				continue
			}
			if logged {
				continue
			}
		}
		delivered := s.deliver(ctx, task, kind, now)
		sent += delivered
		if delivered > 0 && Deduped(kind) {
			if err := db.InsertNotificationLogIfAbsent(task.ID, kind); err != nil {
				utils.Log.Errorf("recording notification log for task %d %s: %+v", task.ID, kind, err)
			}
		}
	}
	return sent
}

// deliver sends one milestone. The overdue kind dual-casts to the
// assignee and all admins as one logical notification; every other kind
// goes to the assignee only.
func (s *Scheduler) deliver(ctx context.Context, task *model.Task, kind model.NotificationKind, now time.Time) int {
	recipients := s.recipients(task, kind)
	sent := 0
	for _, user := range recipients {
		ok, err := s.resolver.ShouldSend(user.ID, kind, now)
		if err != nil {
			utils.Log.Errorf("preference check for user %d: %+v", user.ID, err)
			continue
		}
		if !ok {
			utils.Log.Debugf("skipping %s for task %d: user %d muted or in quiet hours", kind, task.ID, user.ID)
			continue
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return sent
		}
		if err := s.gw.SendText(user.ChatID, renderMilestone(task, kind, now)); err != nil {
			// a failed delivery is expected churn, anything else is not
			if errs.IsDelivery(err) {
				utils.Log.Warnf("sending %s for task %d to chat %s: %v", kind, task.ID, user.ChatID, err)
			} else {
				utils.Log.Errorf("sending %s for task %d to chat %s: %+v", kind, task.ID, user.ChatID, err)
			}
			continue
		}
		sent++
	}
	return sent
}

func (s *Scheduler) recipients(task *model.Task, kind model.NotificationKind) []model.User {
	var recipients []model.User
	if task.AssigneeID != nil {
		if assignee, err := db.GetUser(*task.AssigneeID); err == nil {
			recipients = append(recipients, *assignee)
		} else {
			utils.Log.Warnf("assignee %d for task %d not found: %v", *task.AssigneeID, task.ID, err)
		}
	}
	if kind != model.ReminderOverdue {
		return recipients
	}
	admins, err := db.ListAdmins()
	if err != nil {
		utils.Log.Errorf("loading admins for overdue notice: %+v", err)
		return recipients
	}
	for _, admin := range admins {
		if task.AssigneeID != nil && admin.ID == *task.AssigneeID {
			continue
		}
		recipients = append(recipients, admin)
	}
	return recipients
}

func renderMilestone(task *model.Task, kind model.NotificationKind, now time.Time) string {
	due := task.DueAt.In(conf.Location()).Format("02.01.2006 15:04")
	switch kind {
	case model.Reminder8h:
		return fmt.Sprintf("Reminder: task #%d (%s) is due at %s, about 8 hours left.", task.ID, task.Title, due)
	case model.Reminder4h:
		return fmt.Sprintf("Heads up: task #%d (%s) is due at %s, about 4 hours left.", task.ID, task.Title, due)
	case model.Reminder1h:
		left := task.DueAt.Sub(now).Round(time.Minute)
		return fmt.Sprintf("Urgent: task #%d (%s) is due in %s.", task.ID, task.Title, left)
	case model.ReminderOverdue:
		return fmt.Sprintf("Overdue: task #%d (%s) was due at %s and is not finished.", task.ID, task.Title, due)
	default:
		return fmt.Sprintf("Task #%d (%s) is due at %s.", task.ID, task.Title, due)
	}
}
