package handles

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkrivosheev/taskgram/internal/db"
	"github.com/mkrivosheev/taskgram/internal/errs"
	"github.com/mkrivosheev/taskgram/internal/identity"
	"github.com/mkrivosheev/taskgram/internal/lifecycle"
	"github.com/mkrivosheev/taskgram/internal/model"
	"github.com/mkrivosheev/taskgram/internal/notify"
	"github.com/mkrivosheev/taskgram/server/common"
)

var (
	Controller *lifecycle.Controller
	Dispatcher *notify.Dispatcher
)

const (
	defaultTaskPageSize = 20
	maxTaskPageSize     = 200
)

var undoneStatuses = []model.TaskStatus{
	model.StatusPending,
	model.StatusInProgress,
}

var doneStatuses = []model.TaskStatus{
	model.StatusPartiallyCompleted,
	model.StatusCompleted,
	model.StatusRejected,
}

type taskListQuery struct {
	page     int
	pageSize int
	mine     bool
	keyword  string
}

func parseTaskListQuery(c *gin.Context) taskListQuery {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultTaskPageSize)))
	if err != nil || pageSize <= 0 {
		pageSize = defaultTaskPageSize
	}
	if pageSize > maxTaskPageSize {
		pageSize = maxTaskPageSize
	}
	mine, _ := strconv.ParseBool(c.DefaultQuery("mine", "false"))
	return taskListQuery{
		page:     page,
		pageSize: pageSize,
		mine:     mine,
		keyword:  c.Query("keyword"),
	}
}

func requestUser(c *gin.Context) (*model.User, bool) {
	chatID := c.GetHeader("X-Chat-ID")
	if chatID == "" {
		common.ErrorStrResp(c, "chat identity required", 401)
		return nil, false
	}
	user, err := identity.Resolve(chatID, c.GetHeader("X-Chat-Username"))
	if err != nil {
		common.ErrorResp(c, err, 500)
		return nil, false
	}
	return user, true
}

var (
	UndoneTasks = taskListHandler(undoneStatuses)
	DoneTasks   = taskListHandler(doneStatuses)
)

func taskListHandler(statuses []model.TaskStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := requestUser(c)
		if !ok {
			return
		}
		query := parseTaskListQuery(c)
		assigneeID := uint(0)
		if query.mine || !user.IsAdmin() {
			assigneeID = user.ID
		}
		tasks, total, err := db.ListTasks(statuses, assigneeID, query.keyword, query.page, query.pageSize)
		if err != nil {
			common.ErrorResp(c, err, 500)
			return
		}
		common.SuccessResp(c, common.PageResp{
			Content: tasks,
			Total:   total,
		})
	}
}

type createTaskReq struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueAt       *time.Time `json:"due_at"`
	AssigneeID  *uint      `json:"assignee_id"`
}

func CreateTask(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}
	var req createTaskReq
	if err := c.ShouldBind(&req); err != nil {
		common.ErrorStrResp(c, "invalid request format", 400)
		return
	}
	task, intents, err := Controller.Create(user, lifecycle.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    model.TaskPriority(req.Priority),
		DueAt:       req.DueAt,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		common.ErrorResp(c, err, errCode(err))
		return
	}
	Dispatcher.Dispatch(intents)
	common.SuccessResp(c, task)
}

type transitionReq struct {
	TaskID     uint   `json:"task_id" binding:"required"`
	Target     string `json:"target" binding:"required"`
	Comment    string `json:"comment"`
	AssigneeID *uint  `json:"assignee_id"`
}

func TransitionTask(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}
	var req transitionReq
	if err := c.ShouldBind(&req); err != nil {
		common.ErrorStrResp(c, "invalid request format", 400)
		return
	}
	task, intents, err := Controller.Transition(req.TaskID, user, model.TaskStatus(req.Target), lifecycle.Payload{
		Comment:    req.Comment,
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		common.ErrorResp(c, err, errCode(err))
		return
	}
	Dispatcher.Dispatch(intents)
	common.SuccessResp(c, task)
}

func TaskInfo(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Query("tid"))
	if err != nil {
		common.ErrorStrResp(c, "invalid task id", 400)
		return
	}
	task, err := db.GetTask(uint(id))
	if err != nil {
		common.ErrorStrResp(c, "task not found", 404)
		return
	}
	if !user.IsAdmin() && (task.AssigneeID == nil || *task.AssigneeID != user.ID) && task.CreatorID != user.ID {
		// a 404 instead of a 403 avoids leaking valid ids
		common.ErrorStrResp(c, "task not found", 404)
		return
	}
	attachments, err := db.GetAttachments(task.ID)
	if err != nil {
		common.ErrorResp(c, err, 500)
		return
	}
	history, err := db.GetTaskHistory(task.ID, 50)
	if err != nil {
		common.ErrorResp(c, err, 500)
		return
	}
	common.SuccessResp(c, gin.H{
		"task":        task,
		"attachments": attachments,
		"history":     history,
	})
}

func errCode(err error) int {
	switch {
	case errs.IsValidation(err):
		return 400
	case errs.IsPermission(err):
		return 403
	case errs.IsNotFound(err):
		return 404
	case errs.IsConflict(err):
		return 409
	case errs.IsPersistence(err):
		// the store is down, not the request's fault
		return 503
	default:
		return 500
	}
}
