package app

import "os"

// Config описывает настройки запуска приложения.
type Config struct {
	// HTTPAddr — адрес REST API.
	HTTPAddr string
	// MetricsAddr — адрес HTTP-сервера метрик и health checks.
	MetricsAddr string
	// PostgresDSN — строка подключения к PostgreSQL; пустая строка
	// переключает приложение на in-memory хранилища.
	PostgresDSN string
	// KafkaBrokers — список брокеров через запятую; пустая строка
	// отключает публикацию событий.
	KafkaBrokers string
	// RedisAddr — адрес Redis для кеша каталога; пустая строка
	// отключает кеширование.
	RedisAddr string
}

// DefaultConfig возвращает базовые адреса API и метрик.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
	}
}

// LoadConfigFromEnv читает конфигурацию из окружения, подставляя
// значения по умолчанию для незаданных адресов.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()
	if addr := os.Getenv("ECOM_HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if addr := os.Getenv("ECOM_METRICS_ADDR"); addr != "" {
		cfg.MetricsAddr = addr
	}
	cfg.PostgresDSN = os.Getenv("ECOM_POSTGRES_DSN")
	cfg.KafkaBrokers = os.Getenv("ECOM_KAFKA_BROKERS")
	cfg.RedisAddr = os.Getenv("ECOM_REDIS_ADDR")
	return cfg
}
