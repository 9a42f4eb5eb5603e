package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasksync/internal/app/client"
)

var TaskCmd = &cobra.Command{
	Use:   "task",
	Short: "Управление задачами",
	Long: `Создание, просмотр, изменение и удаление задач.

Все изменения выполняются локально и синхронизируются с сервером
командой tasksync sync.`,
}

// appFromContext достает приложение, созданное корневой командой
func appFromContext(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(client.AppContextKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}
