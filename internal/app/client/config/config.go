package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultLogLevel      = "info"
	defaultEnv           = "local"
	defaultConfigDir     = ".tasksync"

	defaultBatchSize           = 50
	defaultMaxRetries          = 3
	defaultProbeTimeoutSeconds = 5
	defaultRequestTimeout      = 30
)

type Config struct {
	Env            string        `mapstructure:"app_env"`
	ServerAddress  string        `mapstructure:"server_address"`
	LogLevel       string        `mapstructure:"log_level"`
	ConfigDir      string        `mapstructure:"config_dir"`
	DataPath       string        `mapstructure:"data_path"`
	BatchSize      int           `mapstructure:"sync_batch_size"`
	MaxRetries     int           `mapstructure:"sync_max_retries"`
	ProbeTimeout   time.Duration `mapstructure:"probe_timeout_seconds"`
	RequestTimeout time.Duration `mapstructure:"request_timeout_seconds"`
	EnableTLS      bool          `mapstructure:"enable_tls"`
}

// MustLoad загружает конфигурацию клиента
func MustLoad() *Config {
	// Определяем путь к .env файлу (относительно места запуска)
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// Пробуем найти .env в родительской директории
		envPath = "../.env"
	}

	// Загружаем .env файл если существует
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	// Устанавливаем значения по умолчанию
	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("SYNC_BATCH_SIZE", defaultBatchSize)
	viper.SetDefault("SYNC_MAX_RETRIES", defaultMaxRetries)
	viper.SetDefault("PROBE_TIMEOUT_SECONDS", defaultProbeTimeoutSeconds)
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", defaultRequestTimeout)
	viper.SetDefault("ENABLE_TLS", false)

	// Получаем домашнюю директорию пользователя
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	// Вычисляем пути для хранения данных
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}

	// Создаем директории если их нет
	if err := os.MkdirAll(configDir, 0700); err != nil {
		fmt.Printf("Ошибка создания директории конфигурации: %v\n", err)
	}

	dataPath := viper.GetString("DATA_PATH")
	if dataPath == "" {
		dataPath = filepath.Join(configDir, "tasks.db")
	}

	config := &Config{
		Env:            viper.GetString("APP_ENV"),
		ServerAddress:  viper.GetString("SERVER_ADDRESS"),
		LogLevel:       viper.GetString("LOG_LEVEL"),
		ConfigDir:      configDir,
		DataPath:       dataPath,
		BatchSize:      viper.GetInt("SYNC_BATCH_SIZE"),
		MaxRetries:     viper.GetInt("SYNC_MAX_RETRIES"),
		ProbeTimeout:   time.Duration(viper.GetInt("PROBE_TIMEOUT_SECONDS")) * time.Second,
		RequestTimeout: time.Duration(viper.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		EnableTLS:      viper.GetBool("ENABLE_TLS"),
	}

	// Валидация конфигурации
	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}

	return config
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("sync_batch_size должен быть положительным")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("sync_max_retries должен быть положительным")
	}
	return nil
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}
