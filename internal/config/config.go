// Package config loads the simulator's runtime configuration from
// environment variables, covering exactly the options spec.md §6 names.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Config holds all application configuration.
type Config struct {
	Service  ServiceConfig
	Sim      SimConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
}

// ServiceConfig covers ambient service identity, unrelated to the
// simulation domain itself.
type ServiceConfig struct {
	Name        string
	Environment string
	LogLevel    zapcore.Level
}

// SimConfig covers the options spec.md §6 recognizes.
type SimConfig struct {
	// AlgRunFrequency is the tick interval, in minutes.
	AlgRunFrequency time.Duration
	// MaxRuntimeOfAlgorithm bounds each dispatch call.
	MaxRuntimeOfAlgorithm time.Duration
	// Lamda weights lateness in the composite score.
	Lamda float64
	// RandomSeed seeds the dispatcher's PRNG, once per dispatch call.
	RandomSeed int64
	// SelectedInstances names the instance directories to run.
	SelectedInstances []string
	// AlgorithmEntryFileName is the dispatcher binary/script to invoke.
	AlgorithmEntryFileName string
	// AlgorithmSuccessFlag is the stdout marker a successful dispatcher run prints.
	AlgorithmSuccessFlag string
	// OrderStatusToCode is the fixed delivery_state name->code mapping.
	OrderStatusToCode map[string]int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func defaultOrderStatusToCode() map[string]int {
	return map[string]int{
		"INITIALIZATION": 0,
		"GENERATED":      1,
		"ONGOING":        2,
		"COMPLETED":      3,
	}
}

// Load reads configuration from the environment, defaulting any unset
// option to the reference values spec.md §4/§6 describe.
func Load() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        getEnv("SERVICE_NAME", "meal-delivery-simulator"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		},
		Sim: SimConfig{
			AlgRunFrequency:        time.Duration(getEnvInt("ALG_RUN_FREQUENCY", 3)) * time.Minute,
			MaxRuntimeOfAlgorithm:  time.Duration(getEnvInt("MAX_RUNTIME_OF_ALGORITHM", 30)) * time.Second,
			Lamda:                  getEnvFloat("LAMDA", 1.0),
			RandomSeed:             int64(getEnvInt("RANDOM_SEED", 42)),
			SelectedInstances:      getEnvSlice("SELECTED_INSTANCES", nil),
			AlgorithmEntryFileName: getEnv("ALGORITHM_ENTRY_FILE_NAME", "dispatcher"),
			AlgorithmSuccessFlag:   getEnv("ALGORITHM_SUCCESS_FLAG", "SUCCESS"),
			OrderStatusToCode:      defaultOrderStatusToCode(),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "simulator"),
			Password:        getEnv("DB_PASSWORD", "simulator"),
			Database:        getEnv("DB_NAME", "simulator"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5)) * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "meal-delivery-simulation"),
		},
	}
}

// parseLogLevel maps LOG_LEVEL to a zapcore.Level, defaulting to Info
// for anything unrecognized rather than erroring.
func parseLogLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	var result []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
