package logger

import (
	"os"

	"golang.org/x/exp/slog"

	"tasksync/internal/app/server/config"
)

// New создает логгер в зависимости от окружения:
// local - человекочитаемый вывод с debug-уровнем,
// dev - JSON с debug-уровнем, prod - JSON с info-уровнем.
func New(env string) *slog.Logger {
	switch env {
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	case config.EnvProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	default:
		// local и все неизвестные окружения
		return setupPrettySlog()
	}
}

func setupPrettySlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
