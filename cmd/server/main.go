package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasksync/internal/app/server/api"
	"tasksync/internal/app/server/config"
	"tasksync/internal/infrastructure/storage/postgres"
	"tasksync/internal/utils/logger"
)

func main() {
	conf := config.MustLoad()
	log := logger.New(conf.Env)

	storage, err := postgres.New(conf)
	if err != nil {
		log.Error("Ошибка подключения к базе данных", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	router := api.New(storage, log)

	srv := &http.Server{
		Addr:    conf.Server.RunAddress,
		Handler: router,
	}

	go func() {
		log.Info("Сервер запущен", "address", conf.Server.RunAddress, "env", conf.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Ошибка сервера", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Завершение работы сервера...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Ошибка остановки сервера", "error", err)
	}

	log.Info("Сервер остановлен")
}
