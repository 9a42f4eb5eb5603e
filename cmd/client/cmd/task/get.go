package task

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var GetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Показать задачу",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		t, err := app.Tasks().Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("задача не найдена: %w", err)
		}

		fmt.Printf("ID:          %s\n", t.ID)
		fmt.Printf("Название:    %s\n", t.Title)
		if t.Description != "" {
			fmt.Printf("Описание:    %s\n", t.Description)
		}
		fmt.Printf("Выполнена:   %v\n", t.Completed)
		fmt.Printf("Создана:     %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Изменена:    %s\n", t.UpdatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Статус:      %s\n", syncStatusLabel(t.SyncStatus))
		if t.LastSyncedAt != nil {
			fmt.Printf("Последняя синхронизация: %s\n", t.LastSyncedAt.Format("2006-01-02 15:04:05"))
		}
		if t.ServerID != "" {
			fmt.Printf("Серверный ID: %s\n", color.CyanString(t.ServerID))
		}

		return nil
	},
}
