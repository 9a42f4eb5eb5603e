// cmd/client/cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"tasksync/internal/app/client"
	"tasksync/internal/app/client/config"
	"tasksync/internal/utils/logger"
)

var (
	cfg       *config.Config
	log       *slog.Logger
	app       *client.App
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "tasksync",
	Short: "Tasksync - офлайн-менеджер задач с синхронизацией",
	Long: `Tasksync — это клиентское приложение для управления задачами,
работающее без постоянного подключения к серверу.

Все изменения сохраняются локально и попадают в очередь исходящих
операций, которая выгружается на сервер командой sync.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	// Загружаем конфигурацию
	cfg = config.MustLoad()

	// Переопределяем настройки из флагов командной строки
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}

	// Настраиваем логгер
	log = logger.New(cfg.Env)

	// Создаем приложение
	var err error
	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	// Делаем приложение доступным подкомандам через контекст
	cmd.SetContext(context.WithValue(cmd.Context(), client.AppContextKey, app))

	return nil
}

func init() {
	cobra.OnInitialize()

	// Глобальные флаги
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера Tasksync")
}
