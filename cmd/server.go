package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkrivosheev/taskgram/internal/bootstrap"
	"github.com/mkrivosheev/taskgram/internal/conf"
	"github.com/mkrivosheev/taskgram/internal/db"
	"github.com/mkrivosheev/taskgram/internal/gateway"
	"github.com/mkrivosheev/taskgram/internal/lifecycle"
	"github.com/mkrivosheev/taskgram/internal/notify"
	"github.com/mkrivosheev/taskgram/internal/scheduler"
	"github.com/mkrivosheev/taskgram/internal/upload"
	"github.com/mkrivosheev/taskgram/pkg/utils"
	"github.com/mkrivosheev/taskgram/server"
	"github.com/spf13/cobra"
)

var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the reminder scheduler and the ops API",
	Run: func(cmd *cobra.Command, args []string) {
		bootstrap.InitAll()

		gw := gateway.NewTelegram(conf.Conf.Telegram)
		resolver := notify.NewResolver()
		controller := lifecycle.NewController()
		dispatcher := notify.NewDispatcher(gw, resolver)
		sched := scheduler.New(gw, resolver, conf.Conf.Scheduler)
		uploads := upload.NewAggregator(upload.NewMemStore(), conf.Conf.UploadDebounce,
			func(key upload.Key, ref string) error {
				taskID, err := strconv.ParseUint(key.ResourceID, 10, 64)
				if err != nil {
					return err
				}
				return db.InsertAttachment(uint(taskID), ref)
			},
			func(key upload.Key, refs []string) {
				user, err := db.GetUser(key.UserID)
				if err != nil {
					utils.Log.Warnf("upload prompt: user %d not found: %v", key.UserID, err)
					return
				}
				text := fmt.Sprintf("Got %d attachment(s) for task #%s. Send more or continue.", len(refs), key.ResourceID)
				if err := gw.SendText(user.ChatID, text); err != nil {
					utils.Log.Warnf("upload prompt: send to chat %s: %v", user.ChatID, err)
				}
			})

		ctx, cancel := context.WithCancel(context.Background())
		go sched.Run(ctx)

		gin.SetMode(gin.ReleaseMode)
		r := gin.New()
		r.Use(gin.Recovery())
		server.Init(r, controller, dispatcher, resolver, uploads)
		srv := &http.Server{Addr: conf.Conf.HTTPAddr, Handler: r}
		go func() {
			utils.Log.Infof("ops API listening on %s", conf.Conf.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				utils.Log.Fatalf("http server: %+v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		utils.Log.Info("shutting down")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			utils.Log.Errorf("http shutdown: %+v", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(ServerCmd)
}
