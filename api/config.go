// Copyright 2025 Edgaze
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Config holds everything the API server reads from the environment.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	RedisURL         string
	BugReportsPerMin int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	AllowedOrigins []string
}

// LoadConfig reads configuration from the environment. Database settings
// accept either DATABASE_URL or the split DATABASE_* variables; the split
// form wins when both are present.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      buildDatabaseURL(),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		RedisURL:         os.Getenv("REDIS_URL"),
		BugReportsPerMin: getEnvInt("BUG_REPORTS_PER_MINUTE", 5),
		MinioEndpoint:    os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:   os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:   os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:      getEnv("MINIO_BUCKET", "edgaze-attachments"),
		MinioUseSSL:      os.Getenv("MINIO_USE_SSL") == "true",
		AllowedOrigins:   []string{getEnv("CORS_ORIGIN", "*")},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL (or DATABASE_HOST/DATABASE_PASSWORD) is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

// buildDatabaseURL assembles a connection string from split env vars,
// URL-encoding credentials, and falls back to DATABASE_URL.
func buildDatabaseURL() string {
	host := os.Getenv("DATABASE_HOST")
	password := os.Getenv("DATABASE_PASSWORD")
	if host == "" || password == "" {
		return os.Getenv("DATABASE_URL")
	}

	port := getEnv("DATABASE_PORT", "5432")
	name := getEnv("DATABASE_NAME", "edgaze")
	user := getEnv("DATABASE_USER", "edgaze_app")
	sslMode := getEnv("DATABASE_SSLMODE", "require")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(user), url.QueryEscape(password), host, port, name, sslMode)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
