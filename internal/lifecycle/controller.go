package lifecycle

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mkrivosheev/taskgram/internal/conf"
	"github.com/mkrivosheev/taskgram/internal/db"
	"github.com/mkrivosheev/taskgram/internal/errs"
	"github.com/mkrivosheev/taskgram/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Payload carries the optional inputs of a transition request.
type Payload struct {
	// Comment is required for completed, partially_completed and reopen.
	Comment string
	// AssigneeID, when set by an admin, explicitly assigns the task as
	// part of a pending -> in_progress move.
	AssigneeID *uint
	// PhotoRef optionally attaches a completion photo to the intent.
	PhotoRef string
}

// CreateInput describes a new task.
type CreateInput struct {
	Title       string
	Description string
	Priority    model.TaskPriority
	DueAt       *time.Time
	AssigneeID  *uint
}

// Controller validates and applies task transitions. It mutates the store
// synchronously and returns notification intents instead of sending them,
// so it stays unit-testable independent of delivery.
type Controller struct {
	now func() time.Time
}

func NewController() *Controller {
	return &Controller{now: conf.Now}
}

// NewControllerAt pins the controller clock. Intended for tests.
func NewControllerAt(now func() time.Time) *Controller {
	return &Controller{now: now}
}

// Create registers a new task. Admin only. A missing due date defaults to
// seven days out at 23:59 in the deployment zone.
func (c *Controller) Create(creator *model.User, in CreateInput) (*model.Task, []NotificationIntent, error) {
	if !creator.IsAdmin() {
		return nil, nil, errs.Permissionf("only admins create tasks")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, nil, errs.Validationf("title required")
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	due := in.DueAt
	if due == nil {
		d := defaultDue(c.now())
		due = &d
	}
	task := &model.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Priority:    in.Priority,
		Status:      model.StatusPending,
		DueAt:       due,
		AssigneeID:  in.AssigneeID,
		CreatorID:   creator.ID,
	}
	err := db.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return errors.WithStack(err)
		}
		return db.AppendHistoryTx(tx, task.ID, creator.ID, model.ChangeCreated, "", string(model.StatusPending))
	})
	if err != nil {
		return nil, nil, errors.Wrap(errs.ErrPersistence, err.Error())
	}
	var intents []NotificationIntent
	if task.AssigneeID != nil {
		intents = append(intents, NotificationIntent{
			Kind:      IntentAssigned,
			Recipient: *task.AssigneeID,
			Task:      *task,
			ActorName: creator.Username,
		})
	}
	return task, intents, nil
}

// Transition applies a status change requested by requestor. Guards run
// in a fixed order: ownership, comment requirement, claim race, reopen
// rules, then the state machine table.
func (c *Controller) Transition(taskID uint, requestor *model.User, target model.TaskStatus, p Payload) (*model.Task, []NotificationIntent, error) {
	task, err := db.GetTask(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errs.NotFoundf("task %d", taskID)
		}
		return nil, nil, errors.Wrap(errs.ErrPersistence, err.Error())
	}

	// A pending task moving to in_progress with no explicit assignee
	// change is a claim unless the requestor already owns it. The claim
	// also covers the requestor who raced for a just-taken task: the
	// conditional update returns zero rows and the loser gets a
	// conflict, never a silent no-op or a generic denial.
	if task.Status == model.StatusPending && target == model.StatusInProgress && p.AssigneeID == nil {
		owns := task.AssigneeID != nil && *task.AssigneeID == requestor.ID
		if !owns && !(requestor.IsAdmin() && task.AssigneeID != nil) {
			return c.claim(task, requestor)
		}
	}

	if !requestor.IsAdmin() && (task.AssigneeID == nil || *task.AssigneeID != requestor.ID) {
		return nil, nil, errs.Permissionf("not your task")
	}

	if target == model.StatusCompleted || target == model.StatusPartiallyCompleted {
		if strings.TrimSpace(p.Comment) == "" {
			return nil, nil, errs.Validationf("comment required")
		}
	}

	if task.Done() && target == model.StatusInProgress {
		return c.reopen(task, requestor, p)
	}

	if !transitionAllowed(requestor.Role, task.Status, target) {
		return nil, nil, errs.Conflictf("cannot move task from %s to %s", task.Status, target)
	}

	switch target {
	case model.StatusCompleted, model.StatusPartiallyCompleted:
		return c.complete(task, requestor, target, p)
	case model.StatusInProgress:
		return c.start(task, requestor, p)
	default:
		return c.setStatus(task, requestor, target)
	}
}

// claim resolves the unassigned-task race with a single conditional
// update. Zero affected rows means somebody else won; that is surfaced as
// a conflict, never a silent no-op.
func (c *Controller) claim(task *model.Task, requestor *model.User) (*model.Task, []NotificationIntent, error) {
	var rows int64
	err := db.DB().Transaction(func(tx *gorm.DB) error {
		var err error
		rows, err = db.ClaimTaskTx(tx, task.ID, requestor.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}
		return db.AppendHistoryTx(tx, task.ID, requestor.ID, model.ChangeStatus, string(task.Status), string(model.StatusInProgress))
	})
	if err != nil {
		return nil, nil, errors.Wrap(errs.ErrPersistence, err.Error())
	}
	if rows == 0 {
		return nil, nil, errs.Conflictf("task already taken by someone else")
	}
	return c.reload(task.ID)
}

// reopen returns a finished task to work. Admin only, comment required.
// Completion comment and attachments are cleared together with the status
// change and the audit row in one transaction.
func (c *Controller) reopen(task *model.Task, requestor *model.User, p Payload) (*model.Task, []NotificationIntent, error) {
	if !requestor.IsAdmin() {
		return nil, nil, errs.Permissionf("only admins reopen tasks")
	}
	if strings.TrimSpace(p.Comment) == "" {
		return nil, nil, errs.Validationf("comment required")
	}
	old := task.Status
	err := db.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).Updates(map[string]any{
			"status":             model.StatusInProgress,
			"completion_comment": "",
		}).Error; err != nil {
			return errors.WithStack(err)
		}
		if err := db.DeleteAttachments(tx, task.ID); err != nil {
			return err
		}
		return db.AppendHistoryTx(tx, task.ID, requestor.ID, model.ChangeReopened, string(old), string(model.StatusInProgress))
	})
	if err != nil {
		return nil, nil, errors.Wrap(errs.ErrPersistence, err.Error())
	}
	updated, intents, err := c.reload(task.ID)
	if err != nil {
		return nil, nil, err
	}
	if task.AssigneeID != nil {
		intents = append(intents, NotificationIntent{
			Kind:      IntentReopened,
			Recipient: *task.AssigneeID,
			Task:      *updated,
			Comment:   p.Comment,
			ActorName: requestor.Username,
		})
	}
	return updated, intents, nil
}

// complete finishes or partially finishes a task. Status and completion
// comment land in one update so they cannot diverge.
func (c *Controller) complete(task *model.Task, requestor *model.User, target model.TaskStatus, p Payload) (*model.Task, []NotificationIntent, error) {
	old := task.Status
	err := db.DB().Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Task{}).Where("id = ?", task.ID).Updates(map[string]any{
			"status":             target,
			"completion_comment": strings.TrimSpace(p.Comment),
		})
		if res.Error != nil {
			return errors.WithStack(res.Error)
		}
		return db.AppendHistoryTx(tx, task.ID, requestor.ID, model.ChangeStatus, string(old), string(target))
	})
	if err != nil {
		return nil, nil, errors.Wrap(errs.ErrPersistence, err.Error())
	}
	updated, intents, err := c.reload(task.ID)
	if err != nil {
		return nil, nil, err
	}
	kind := IntentCompleted
	if target == model.StatusPartiallyCompleted {
		kind = IntentPartiallyCompleted
	}
	if task.CreatorID != 0 && task.CreatorID != requestor.ID {
		intents = append(intents, NotificationIntent{
			Kind:      kind,
			Recipient: task.CreatorID,
			Task:      *updated,
			Comment:   strings.TrimSpace(p.Comment),
			ActorName: requestor.Username,
			PhotoRef:  p.PhotoRef,
		})
	}
	return updated, intents, nil
}

// start moves an already-assigned pending task to in_progress, or lets an
// admin hand the task to an explicit assignee.
func (c *Controller) start(task *model.Task, requestor *model.User, p Payload) (*model.Task, []NotificationIntent, error) {
	fields := map[string]any{}
	var intents []NotificationIntent
	if p.AssigneeID != nil {
		if !requestor.IsAdmin() {
			return nil, nil, errs.Permissionf("only admins assign tasks")
		}
		fields["assignee_id"] = *p.AssigneeID
	}
	old := task.Status
	err := db.DB().Transaction(func(tx *gorm.DB) error {
		values := map[string]any{"status": model.StatusInProgress}
		for k, v := range fields {
			values[k] = v
		}
		if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).Updates(values).Error; err != nil {
			return errors.WithStack(err)
		}
		if p.AssigneeID != nil {
			oldAssignee := ""
			if task.AssigneeID != nil {
				oldAssignee = strconv.Itoa(int(*task.AssigneeID))
			}
			if err := db.AppendHistoryTx(tx, task.ID, requestor.ID, model.ChangeAssignee, oldAssignee, strconv.Itoa(int(*p.AssigneeID))); err != nil {
				return err
			}
		}
		return db.AppendHistoryTx(tx, task.ID, requestor.ID, model.ChangeStatus, string(old), string(model.StatusInProgress))
	})
	if err != nil {
		return nil, nil, errors.Wrap(errs.ErrPersistence, err.Error())
	}
	updated, _, err := c.reload(task.ID)
	if err != nil {
		return nil, nil, err
	}
	if p.AssigneeID != nil {
		intents = append(intents, NotificationIntent{
			Kind:      IntentAssigned,
			Recipient: *p.AssigneeID,
			Task:      *updated,
			ActorName: requestor.Username,
		})
	}
	return updated, intents, nil
}

// setStatus handles the remaining plain moves: rejection and the manual
// reset to pending. Neither produces an intent.
func (c *Controller) setStatus(task *model.Task, requestor *model.User, target model.TaskStatus) (*model.Task, []NotificationIntent, error) {
	old := task.Status
	err := db.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).Update("status", target).Error; err != nil {
			return errors.WithStack(err)
		}
		return db.AppendHistoryTx(tx, task.ID, requestor.ID, model.ChangeStatus, string(old), string(target))
	})
	if err != nil {
		return nil, nil, errors.Wrap(errs.ErrPersistence, err.Error())
	}
	return c.reload(task.ID)
}

func (c *Controller) reload(taskID uint) (*model.Task, []NotificationIntent, error) {
	task, err := db.GetTask(taskID)
	if err != nil {
		return nil, nil, errors.Wrap(errs.ErrPersistence, err.Error())
	}
	return task, nil, nil
}

func defaultDue(now time.Time) time.Time {
	d := now.AddDate(0, 0, 7)
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 0, 0, conf.Location())
}

// Describe renders a short audit label like "task #12", shared by the ops
// surface and the dispatcher.
func Describe(t *model.Task) string {
	return fmt.Sprintf("task #%d (%s)", t.ID, t.Title)
}
