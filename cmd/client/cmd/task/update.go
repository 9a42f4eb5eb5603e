package task

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tasksync/internal/app/client"
)

var (
	updateTitle       string
	updateDescription string
)

var UpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Изменить задачу",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		var patch client.TaskPatch
		if cmd.Flags().Changed("title") {
			patch.Title = &updateTitle
		}
		if cmd.Flags().Changed("description") {
			patch.Description = &updateDescription
		}

		if _, err := app.Tasks().Update(cmd.Context(), args[0], patch); err != nil {
			return fmt.Errorf("ошибка изменения задачи: %w", err)
		}

		color.Green("✓ Задача изменена")

		return nil
	},
}

var CompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Отметить задачу выполненной",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		completed := true
		if _, err := app.Tasks().Update(cmd.Context(), args[0], client.TaskPatch{Completed: &completed}); err != nil {
			return fmt.Errorf("ошибка изменения задачи: %w", err)
		}

		color.Green("✓ Задача отмечена выполненной")

		return nil
	},
}

func init() {
	UpdateCmd.Flags().StringVarP(&updateTitle, "title", "t", "", "новое название")
	UpdateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "новое описание")
}
