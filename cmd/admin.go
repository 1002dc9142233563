package cmd

import (
	"github.com/mkrivosheev/taskgram/internal/bootstrap"
	"github.com/mkrivosheev/taskgram/internal/db"
	"github.com/mkrivosheev/taskgram/internal/model"
	"github.com/mkrivosheev/taskgram/pkg/utils"
	"github.com/spf13/cobra"
)

var adminUsername string

// InitAdminCmd promotes a chat identity to admin, creating the user row
// if it does not exist yet. Needed once after a fresh deployment, since
// every user otherwise registers as an employee.
var InitAdminCmd = &cobra.Command{
	Use:   "init-admin <chat-id>",
	Short: "Create or promote an admin user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bootstrap.InitAll()
		chatID := args[0]
		user, err := db.GetOrCreateUser(chatID, adminUsername)
		if err != nil {
			utils.Log.Fatalf("failed to resolve user %s: %+v", chatID, err)
		}
		if user.IsAdmin() {
			utils.Log.Infof("user %s is already an admin", chatID)
			return
		}
		if err := db.SetUserRole(chatID, model.RoleAdmin); err != nil {
			utils.Log.Fatalf("failed to promote user %s: %+v", chatID, err)
		}
		utils.Log.Infof("user %s promoted to admin", chatID)
	},
}

func init() {
	InitAdminCmd.Flags().StringVar(&adminUsername, "username", "", "username to record for a newly created user")
	RootCmd.AddCommand(InitAdminCmd)
}
