// cmd/client/cmd/init.go
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tasksync/cmd/client/cmd/sync"
	"tasksync/cmd/client/cmd/task"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Проверить соединение с сервером",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		if err := app.CheckConnection(ctx); err != nil {
			return fmt.Errorf("сервер недоступен: %w", err)
		}

		fmt.Println("✓ Соединение с сервером установлено")
		return nil
	},
}

func init() {
	// Команды работы с задачами
	rootCmd.AddCommand(task.TaskCmd)
	task.TaskCmd.AddCommand(task.CreateCmd)
	task.TaskCmd.AddCommand(task.GetCmd)
	task.TaskCmd.AddCommand(task.ListCmd)
	task.TaskCmd.AddCommand(task.UpdateCmd)
	task.TaskCmd.AddCommand(task.CompleteCmd)
	task.TaskCmd.AddCommand(task.DeleteCmd)

	rootCmd.AddCommand(sync.SyncCmd)
	rootCmd.AddCommand(pingCmd)
}
