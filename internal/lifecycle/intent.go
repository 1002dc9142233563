package lifecycle

import "github.com/mkrivosheev/taskgram/internal/model"

type IntentKind string

const (
	IntentAssigned           IntentKind = "assigned"
	IntentCompleted          IntentKind = "completed"
	IntentPartiallyCompleted IntentKind = "partially_completed"
	IntentReopened           IntentKind = "reopened"
)

// NotificationIntent is a side effect the Controller computed but did not
// send. The dispatcher delivers intents only after the store commit
// succeeded, so persisted state and attempted notifications never
// diverge.
type NotificationIntent struct {
	Kind      IntentKind
	Recipient uint
	Task      model.Task
	Comment   string
	ActorName string
	PhotoRef  string
}
