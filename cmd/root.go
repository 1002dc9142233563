package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "taskgram",
	Short: "Task assignment and deadline reminder service",
	Long: `taskgram assigns and tracks time-boxed work items through a chat
interface and proactively reminds assignees about approaching and
missed deadlines.`,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
