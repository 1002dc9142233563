package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mkrivosheev/taskgram/internal/lifecycle"
	"github.com/mkrivosheev/taskgram/internal/notify"
	"github.com/mkrivosheev/taskgram/internal/upload"
	"github.com/mkrivosheev/taskgram/server/handles"
)

// Init wires the ops API. The surface is internal: identity arrives as a
// chat id header and goes through the same resolver the bot flows use.
func Init(r *gin.Engine, controller *lifecycle.Controller, dispatcher *notify.Dispatcher, resolver *notify.Resolver, uploads *upload.Aggregator) {
	handles.Controller = controller
	handles.Dispatcher = dispatcher
	handles.Resolver = resolver
	handles.Uploads = uploads

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowHeaders:    []string{"*"},
		AllowMethods:    []string{"*"},
	}))

	r.GET("/ping", func(c *gin.Context) {
		c.String(200, "pong")
	})

	api := r.Group("/api")
	tasks := api.Group("/tasks")
	tasks.GET("/undone", handles.UndoneTasks)
	tasks.GET("/done", handles.DoneTasks)
	tasks.GET("/info", handles.TaskInfo)
	tasks.POST("", handles.CreateTask)
	tasks.POST("/transition", handles.TransitionTask)
	tasks.POST("/attachments", handles.AddAttachment)
	tasks.POST("/attachments/finish", handles.FinishAttachments)

	prefs := api.Group("/preferences")
	prefs.GET("", handles.GetPreferences)
	prefs.POST("", handles.UpdatePreference)
}
