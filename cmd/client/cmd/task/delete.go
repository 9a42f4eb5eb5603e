package task

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Удалить задачу",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		if err := app.Tasks().Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("ошибка удаления задачи: %w", err)
		}

		color.Green("✓ Задача удалена")

		return nil
	},
}
