package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = "../../.env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultRunAddress = ":8080"
	defaultMigrations = "migrations"
)

type Config struct {
	Env    string
	DB     db
	Server server
	Logger logger
}

type defaultConfig struct {
	RunAddress  string
	DatabaseURI string
	LogLevel    string
	Env         string
	Migrations  string
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress string `env:"RUN_ADDRESS"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()
	d := defaultConfig{
		RunAddress:  viper.GetString("run_address"),
		DatabaseURI: viper.GetString("database_uri"),
		LogLevel:    viper.GetString("log_level"),
		Env:         viper.GetString("app_env"),
		Migrations:  viper.GetString("migrations_path"),
	}
	if d.RunAddress == "" {
		d.RunAddress = defaultRunAddress
	}
	if d.Migrations == "" {
		d.Migrations = defaultMigrations
	}

	config := Config{
		Env: d.Env,
		DB: db{
			DatabaseURI: d.DatabaseURI,
			Migrations:  d.Migrations,
		},
		Server: server{RunAddress: d.RunAddress},
		Logger: logger{LogLevel: d.LogLevel},
	}

	return &config
}
