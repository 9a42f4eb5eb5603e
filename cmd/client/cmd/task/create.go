package task

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tasksync/internal/app/client"
)

var createDescription string

var CreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Создать задачу",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		created, err := app.Tasks().Create(cmd.Context(), client.CreateRequest{
			Title:       args[0],
			Description: createDescription,
		})
		if err != nil {
			return fmt.Errorf("ошибка создания задачи: %w", err)
		}

		color.Green("✓ Задача создана")
		fmt.Printf("ID: %s\n", created.ID)

		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVarP(&createDescription, "description", "d", "", "описание задачи")
}
