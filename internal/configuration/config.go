package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type MongoConfig struct {
	Uri                string `validate:"required,contains=mongodb"`
	Database           string `validate:"required"`
	MessagesCollection string `validate:"required"`
	UsersCollection    string `validate:"required"`
}

type ServerConfig struct {
	AppPort        int `validate:"required,min=1,max=65535"`
	SocketPort     int `validate:"required,min=1,max=65535"`
	SocketRoute    string
	AllowedOrigins []string
}

type Config struct {
	ChatDatabase MongoConfig
	Server       ServerConfig
	JWTSecret    string `validate:"required,min=16"`
}

// LoadConfig reads the environment (optionally pre-loaded from a .env file)
// and validates the result before anything connects. A misconfigured secret
// or database URI should fail here, not on the first request.
func LoadConfig() (*Config, error) {
	// .env is a local-development convenience; deployed environments inject
	// real variables and have no file.
	_ = godotenv.Load()

	appPort, err := envInt("APP_PORT", 4000)
	if err != nil {
		return nil, err
	}
	socketPort, err := envInt("SOCKET_PORT", 5000)
	if err != nil {
		return nil, err
	}

	config := &Config{
		ChatDatabase: MongoConfig{
			Uri:                os.Getenv("MONGODB_URI"),
			Database:           envDefault("MONGODB_DATABASE", "medilink"),
			MessagesCollection: envDefault("MESSAGES_COLLECTION", "messages"),
			UsersCollection:    envDefault("USERS_COLLECTION", "users"),
		},
		Server: ServerConfig{
			AppPort:        appPort,
			SocketPort:     socketPort,
			SocketRoute:    envDefault("SOCKET_ROUTE", "ws"),
			AllowedOrigins: envList("ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func envList(key, fallback string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
