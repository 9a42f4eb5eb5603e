package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/exp/slog"

	"tasksync/internal/app/client/config"
	"tasksync/internal/domain/sync"
)

type httpClient struct {
	client    *http.Client
	config    *config.Config
	log       *slog.Logger
	baseURL   string
	userAgent string
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) (*httpClient, error) {
	client := &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			DisableCompression:  false,
			DisableKeepAlives:   false,
			MaxIdleConnsPerHost: 10,
		},
	}

	// Определяем протокол
	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}
	baseURL := scheme + cfg.ServerAddress

	return &httpClient{
		client:    client,
		config:    cfg,
		log:       log,
		baseURL:   baseURL,
		userAgent: "Tasksync-Client/1.0",
	}, nil
}

// HealthCheck проверяет доступность сервера. Пробный запрос ограничен
// собственным таймаутом, чтобы не блокировать запуск синхронизации.
func (h *httpClient) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.config.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", h.baseURL+"/api/v1/sync/health", nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("сервер недоступен: %w", err)
	}
	defer resp.Body.Close()

	// Любой ответ 2xx означает, что сервер доступен
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("сервер вернул статус: %d", resp.StatusCode)
	}

	return nil
}

// SyncBatch отправляет пакет операций и возвращает результаты по каждой
func (h *httpClient) SyncBatch(ctx context.Context, req sync.BatchRequest) (*sync.BatchResponse, error) {
	resp, err := h.doRequest(ctx, "POST", "/api/v1/sync/batch", req)
	if err != nil {
		return nil, err
	}

	var result sync.BatchResponse
	if err := h.parseResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetSyncStatus получает статус синхронизации с сервера
func (h *httpClient) GetSyncStatus(ctx context.Context) (*sync.Status, error) {
	resp, err := h.doRequest(ctx, "GET", "/api/v1/sync/status", nil)
	if err != nil {
		return nil, err
	}

	var result sync.Status
	if err := h.parseResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)

	h.log.Debug("Отправка запроса",
		"method", method,
		"url", req.URL.String(),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	h.log.Debug("Получен ответ",
		"status", resp.StatusCode,
	)

	if resp.StatusCode >= 400 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("ошибка сервера: %s", errResp.Detail)
		}
		return fmt.Errorf("ошибка сервера: статус %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}

	return nil
}
