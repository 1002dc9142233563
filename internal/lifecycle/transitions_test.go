package lifecycle

import (
	"testing"

	"github.com/mkrivosheev/taskgram/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestAllowedTransitions(t *testing.T) {
	cases := []struct {
		role   string
		from   model.TaskStatus
		to     model.TaskStatus
		expect bool
	}{
		{model.RoleEmployee, model.StatusPending, model.StatusInProgress, true},
		{model.RoleEmployee, model.StatusPending, model.StatusCompleted, false},
		{model.RoleEmployee, model.StatusInProgress, model.StatusCompleted, true},
		{model.RoleEmployee, model.StatusInProgress, model.StatusPartiallyCompleted, true},
		{model.RoleEmployee, model.StatusInProgress, model.StatusRejected, true},
		{model.RoleEmployee, model.StatusInProgress, model.StatusPending, true},
		{model.RoleAdmin, model.StatusCompleted, model.StatusInProgress, true},
		{model.RoleAdmin, model.StatusPartiallyCompleted, model.StatusInProgress, true},
		{model.RoleEmployee, model.StatusCompleted, model.StatusInProgress, false},
		{model.RoleEmployee, model.StatusPartiallyCompleted, model.StatusInProgress, false},
		// rejected is terminal for everyone
		{model.RoleAdmin, model.StatusRejected, model.StatusInProgress, false},
		{model.RoleAdmin, model.StatusRejected, model.StatusPending, false},
		{model.RoleEmployee, model.StatusRejected, model.StatusInProgress, false},
	}
	for _, tc := range cases {
		got := transitionAllowed(tc.role, tc.from, tc.to)
		assert.Equalf(t, tc.expect, got, "%s: %s -> %s", tc.role, tc.from, tc.to)
	}
}

func TestRejectedHasNoExits(t *testing.T) {
	assert.Empty(t, AllowedTransitions(model.RoleAdmin, model.StatusRejected))
	assert.Empty(t, AllowedTransitions(model.RoleEmployee, model.StatusRejected))
}
