package common

import (
	"github.com/gin-gonic/gin"
	"github.com/mkrivosheev/taskgram/pkg/utils"
)

type Resp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type PageResp struct {
	Content any   `json:"content"`
	Total   int64 `json:"total"`
}

func SuccessResp(c *gin.Context, data ...any) {
	if len(data) == 0 {
		c.JSON(200, Resp{Code: 200, Message: "success"})
		return
	}
	c.JSON(200, Resp{Code: 200, Message: "success", Data: data[0]})
}

func ErrorResp(c *gin.Context, err error, code int) {
	utils.Log.Errorf("%+v", err)
	c.JSON(200, Resp{Code: code, Message: err.Error()})
	c.Abort()
}

func ErrorStrResp(c *gin.Context, str string, code int) {
	c.JSON(200, Resp{Code: code, Message: str})
	c.Abort()
}
