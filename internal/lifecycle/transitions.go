package lifecycle

import (
	"github.com/mkrivosheev/taskgram/internal/model"
	"github.com/mkrivosheev/taskgram/pkg/utils"
)

// AllowedTransitions returns the target statuses a requestor with the
// given role may move a task to from the given status. Pure function, no
// store access, so guard logic is testable without any delivery or
// rendering layer.
//
// rejected is terminal: the observed product behavior defines no way out
// of it, and this table keeps that authoritative.
func AllowedTransitions(role string, status model.TaskStatus) []model.TaskStatus {
	switch status {
	case model.StatusPending:
		return []model.TaskStatus{model.StatusInProgress}
	case model.StatusInProgress:
		return []model.TaskStatus{
			model.StatusPartiallyCompleted,
			model.StatusCompleted,
			model.StatusRejected,
			model.StatusPending,
		}
	case model.StatusPartiallyCompleted, model.StatusCompleted:
		// reopen only, and only for admins
		if role == model.RoleAdmin {
			return []model.TaskStatus{model.StatusInProgress}
		}
		return nil
	default:
		return nil
	}
}

func transitionAllowed(role string, from, to model.TaskStatus) bool {
	return utils.SliceContains(AllowedTransitions(role, from), to)
}
