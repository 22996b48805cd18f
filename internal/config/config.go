package config

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Kafka    KafkaConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	URL          string
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type JWTConfig struct {
	Secret         string
	ExpirationTime time.Duration
}

type KafkaConfig struct {
	// Brokers is a comma-separated list; empty disables event production.
	Brokers string
	Topic   string
}

var (
	instance *Config
	once     sync.Once
)

func LoadConfig() (*Config, error) {
	once.Do(func() {
		viper.SetDefault("WCONNECT_PORT", "8080")
		viper.SetDefault("WCONNECT_READ_TIMEOUT", 30*time.Second)
		viper.SetDefault("WCONNECT_WRITE_TIMEOUT", 30*time.Second)
		viper.SetDefault("WCONNECT_IDLE_TIMEOUT", 60*time.Second)
		viper.SetDefault("WCONNECT_JWT_SECRET", "secret")
		viper.SetDefault("WCONNECT_JWT_EXPIRE", "24h")
		viper.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
		viper.SetDefault("REDIS_MAX_RETRIES", 3)
		viper.SetDefault("REDIS_POOL_SIZE", 100)
		viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
		viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
		viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
		viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
		viper.SetDefault("POSTGRES_USER", "postgres")
		viper.SetDefault("POSTGRES_PASSWORD", "password")
		viper.SetDefault("POSTGRES_HOST", "localhost")
		viper.SetDefault("POSTGRES_PORT", "5432")
		viper.SetDefault("POSTGRES_DB", "wconnect")
		viper.SetDefault("POSTGRES_SSLMODE", "disable")
		viper.SetDefault("KAFKA_BROKERS", "")
		viper.SetDefault("KAFKA_TOPIC", "wconnect.messages")
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Host:         viper.GetString("WCONNECT_HOST"),
				Port:         viper.GetString("WCONNECT_PORT"),
				ReadTimeout:  viper.GetDuration("WCONNECT_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("WCONNECT_WRITE_TIMEOUT"),
				IdleTimeout:  viper.GetDuration("WCONNECT_IDLE_TIMEOUT"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("POSTGRES_HOST"),
				Port:     viper.GetString("POSTGRES_PORT"),
				User:     viper.GetString("POSTGRES_USER"),
				Password: viper.GetString("POSTGRES_PASSWORD"),
				DBName:   viper.GetString("POSTGRES_DB"),
				SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
			},
			Redis: RedisConfig{
				URL:          viper.GetString("REDIS_URL"),
				MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
				DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
				ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
				PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
				MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
			},
			JWT: JWTConfig{
				Secret:         viper.GetString("WCONNECT_JWT_SECRET"),
				ExpirationTime: viper.GetDuration("WCONNECT_JWT_EXPIRE"),
			},
			Kafka: KafkaConfig{
				Brokers: viper.GetString("KAFKA_BROKERS"),
				Topic:   viper.GetString("KAFKA_TOPIC"),
			},
		}
	})

	return instance, nil
}
