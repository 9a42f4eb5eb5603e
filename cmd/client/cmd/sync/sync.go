package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tasksync/internal/app/client"
)

var syncStatus bool

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизация с сервером",
	Long: `Выгрузка очереди локальных изменений на сервер.

Операции отправляются в порядке их создания. Конфликты разрешаются
на сервере по принципу last-write-wins, серверная версия в этом
случае замещает локальную.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(client.AppContextKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		if syncStatus {
			return showStatus(cmd.Context(), app)
		}

		return runSync(cmd.Context(), app)
	},
}

func runSync(ctx context.Context, app *client.App) error {
	fmt.Println("Начало синхронизации...")

	result, err := app.Sync(ctx)
	if err != nil {
		if errors.Is(err, client.ErrSyncInProgress) {
			return fmt.Errorf("синхронизация уже выполняется")
		}
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}

	fmt.Println()
	if result.Success {
		color.Green("✓ Синхронизация завершена")
	} else {
		color.Yellow("⚠ Синхронизация завершена с ошибками")
	}
	fmt.Printf("Время выполнения: %v\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("Синхронизировано: %d\n", result.Synced)

	if result.Failed > 0 {
		fmt.Printf("С ошибками: %d\n", result.Failed)
		for i, syncErr := range result.Errors {
			if i >= 3 {
				fmt.Printf("  ... и еще %d ошибок\n", len(result.Errors)-3)
				break
			}
			fmt.Printf("  • %s %s: %s\n", syncErr.Operation, syncErr.TaskID, syncErr.Error)
		}
	}

	return nil
}

func showStatus(ctx context.Context, app *client.App) error {
	report, err := app.SyncStatus(ctx)
	if err != nil {
		return fmt.Errorf("ошибка получения статуса: %w", err)
	}

	fmt.Println("=== Статус синхронизации ===")
	fmt.Printf("Элементов в очереди: %d\n", report.PendingEntries)
	fmt.Printf("Задач, ожидающих синхронизации: %d\n", report.TasksNeedingSync)
	if report.LastSyncTime.IsZero() {
		fmt.Println("Последняя синхронизация: никогда")
	} else {
		fmt.Printf("Последняя синхронизация: %s\n", report.LastSyncTime.Format("2006-01-02 15:04:05"))
	}

	// Серверная сторона опциональна: офлайн не считается ошибкой
	if serverStatus, err := app.ServerSyncStatus(ctx); err == nil {
		fmt.Printf("Задач на сервере: %d\n", serverStatus.TotalTasks)
	} else {
		color.Yellow("Сервер недоступен: %v", err)
	}

	return nil
}

func init() {
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "показать статус синхронизации")
}
