package handles

import (
	"github.com/gin-gonic/gin"
	"github.com/mkrivosheev/taskgram/internal/notify"
	"github.com/mkrivosheev/taskgram/server/common"
)

var Resolver *notify.Resolver

func GetPreferences(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}
	pref, err := Resolver.GetOrCreate(user.ID)
	if err != nil {
		common.ErrorResp(c, err, 500)
		return
	}
	common.SuccessResp(c, pref)
}

type updatePrefReq struct {
	Field string `json:"field" binding:"required"`
	Value any    `json:"value" binding:"required"`
}

// UpdatePreference writes one preference field for the requesting user.
// Users only ever edit their own row.
func UpdatePreference(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}
	var req updatePrefReq
	if err := c.ShouldBind(&req); err != nil {
		common.ErrorStrResp(c, "invalid request format", 400)
		return
	}
	if err := Resolver.Update(user.ID, req.Field, req.Value); err != nil {
		common.ErrorResp(c, err, 400)
		return
	}
	pref, err := Resolver.GetOrCreate(user.ID)
	if err != nil {
		common.ErrorResp(c, err, 500)
		return
	}
	common.SuccessResp(c, pref)
}
