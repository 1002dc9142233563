package handles

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkrivosheev/taskgram/internal/db"
	"github.com/mkrivosheev/taskgram/internal/model"
	"github.com/mkrivosheev/taskgram/internal/upload"
	"github.com/mkrivosheev/taskgram/server/common"
)

var Uploads *upload.Aggregator

type attachmentReq struct {
	TaskID uint   `json:"task_id" binding:"required"`
	Ref    string `json:"ref" binding:"required"`
}

func uploadKey(userID, taskID uint) upload.Key {
	return upload.Key{
		UserID:     userID,
		ResourceID: strconv.FormatUint(uint64(taskID), 10),
	}
}

func mayAttach(user *model.User, task *model.Task) bool {
	if user.IsAdmin() || task.CreatorID == user.ID {
		return true
	}
	return task.AssigneeID != nil && *task.AssigneeID == user.ID
}

// AddAttachment records one attachment ref for a task. The ref is stored
// immediately; the "got N files" reply is debounced so a burst of uploads
// produces a single prompt.
func AddAttachment(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}
	var req attachmentReq
	if err := c.ShouldBind(&req); err != nil {
		common.ErrorStrResp(c, "invalid request format", 400)
		return
	}
	task, err := db.GetTask(req.TaskID)
	if err != nil {
		common.ErrorStrResp(c, "task not found", 404)
		return
	}
	if !mayAttach(user, task) {
		common.ErrorStrResp(c, "task not found", 404)
		return
	}
	if err := Uploads.Add(uploadKey(user.ID, task.ID), req.Ref); err != nil {
		common.ErrorResp(c, err, 500)
		return
	}
	common.SuccessResp(c)
}

type finishAttachmentsReq struct {
	TaskID uint `json:"task_id" binding:"required"`
}

// FinishAttachments ends the upload burst for a task without waiting for
// the debounce window and returns the refs that were still pending.
func FinishAttachments(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}
	var req finishAttachmentsReq
	if err := c.ShouldBind(&req); err != nil {
		common.ErrorStrResp(c, "invalid request format", 400)
		return
	}
	refs := Uploads.Finish(uploadKey(user.ID, req.TaskID))
	common.SuccessResp(c, gin.H{"pending": refs})
}
