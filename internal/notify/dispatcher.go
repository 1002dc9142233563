package notify

import (
	"fmt"
	"time"

	"github.com/mkrivosheev/taskgram/internal/conf"
	"github.com/mkrivosheev/taskgram/internal/db"
	"github.com/mkrivosheev/taskgram/internal/gateway"
	"github.com/mkrivosheev/taskgram/internal/lifecycle"
	"github.com/mkrivosheev/taskgram/pkg/utils"
)

// Dispatcher turns Controller intents into gateway sends. It runs after
// the store commit; a failed send is logged and dropped.
type Dispatcher struct {
	gw       gateway.Gateway
	resolver *Resolver
	now      func() time.Time
}

func NewDispatcher(gw gateway.Gateway, resolver *Resolver) *Dispatcher {
	return &Dispatcher{gw: gw, resolver: resolver, now: conf.Now}
}

func NewDispatcherAt(gw gateway.Gateway, resolver *Resolver, now func() time.Time) *Dispatcher {
	return &Dispatcher{gw: gw, resolver: resolver, now: now}
}

// Dispatch sends every intent it can. Completion intents carry the
// assignee's comment toward the creator, so they respect the
// comment-mention toggle and quiet hours; assignment and reopen notices
// are always delivered.
func (d *Dispatcher) Dispatch(intents []lifecycle.NotificationIntent) {
	for _, intent := range intents {
		d.dispatchOne(intent)
	}
}

func (d *Dispatcher) dispatchOne(intent lifecycle.NotificationIntent) {
	user, err := db.GetUser(intent.Recipient)
	if err != nil {
		utils.Log.Warnf("dispatch: recipient %d not found for %s: %v", intent.Recipient, intent.Kind, err)
		return
	}
	if intent.Kind == lifecycle.IntentCompleted || intent.Kind == lifecycle.IntentPartiallyCompleted {
		pref, err := d.resolver.GetOrCreate(user.ID)
		if err != nil {
			utils.Log.Warnf("dispatch: preferences for user %d: %v", user.ID, err)
			return
		}
		if !pref.EnableComment {
			return
		}
		if quiet, err := InQuietHours(pref, d.now()); err != nil || quiet {
			return
		}
	}
	text := renderIntent(intent)
	if intent.PhotoRef != "" {
		err = d.gw.SendPhoto(user.ChatID, intent.PhotoRef, text)
	} else {
		err = d.gw.SendText(user.ChatID, text)
	}
	if err != nil {
		utils.Log.Warnf("dispatch: could not send %s for %s to chat %s: %v",
			intent.Kind, lifecycle.Describe(&intent.Task), user.ChatID, err)
		return
	}
	utils.Log.Infof("dispatch: sent %s for %s to chat %s", intent.Kind, lifecycle.Describe(&intent.Task), user.ChatID)
}

func renderIntent(intent lifecycle.NotificationIntent) string {
	t := intent.Task
	due := ""
	if t.DueAt != nil {
		due = t.DueAt.In(conf.Location()).Format("02.01.2006 15:04")
	}
	switch intent.Kind {
	case lifecycle.IntentAssigned:
		return fmt.Sprintf("You have a new task.\n\nTask #%d: %s\nPriority: %s\nDue: %s\nCreated by: @%s",
			t.ID, t.Title, t.Priority, due, intent.ActorName)
	case lifecycle.IntentCompleted:
		return fmt.Sprintf("Task completed.\n\nTask #%d: %s\nDone by: @%s\nComment: %s",
			t.ID, t.Title, intent.ActorName, intent.Comment)
	case lifecycle.IntentPartiallyCompleted:
		return fmt.Sprintf("Task partially completed.\n\nTask #%d: %s\nReported by: @%s\nProgress: %s",
			t.ID, t.Title, intent.ActorName, intent.Comment)
	case lifecycle.IntentReopened:
		return fmt.Sprintf("Task returned to work.\n\nTask #%d: %s\nDue: %s\nReopened by: @%s\nComment: %s",
			t.ID, t.Title, due, intent.ActorName, intent.Comment)
	default:
		return fmt.Sprintf("Task #%d (%s) changed to %s", t.ID, t.Title, t.Status)
	}
}
