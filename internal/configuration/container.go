package configuration

import (
	"context"
	"fmt"
	"time"

	"Medilink/internal/auth"
	"Medilink/internal/db"
	"Medilink/internal/handler"
	"Medilink/internal/hub"
	"Medilink/internal/model"
	"Medilink/internal/repo"
	"Medilink/internal/service"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Container struct {
	AuthHandler    handler.AuthHandler
	UserHandler    handler.UserHandler
	MessageHandler handler.MessageHandler
	StatsHandler   handler.StatsHandler
	TokenManager   *auth.Manager
	Hub            *hub.Hub
	Config         Config
	Logger         *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
}

func BuildContainer() (*Container, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	con, err := db.OpenConnection(config.ChatDatabase.Uri, config.ChatDatabase.Database)
	if err != nil {
		return nil, err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	messageStore := db.NewRepository[model.Message](con, config.ChatDatabase.MessagesCollection)
	userStore := db.NewRepository[model.User](con, config.ChatDatabase.UsersCollection)

	messageRepo := repo.NewMessageRepository(con, messageStore, logger)
	userRepo := repo.NewUserRepository(con, userStore, logger)

	tokenManager := auth.NewManager(config.JWTSecret)

	userService := service.NewUserService(userRepo, logger)
	messageService := service.NewMessageService(messageRepo, logger)

	chatHub := hub.NewHub(config.Server.AllowedOrigins)

	return &Container{
		AuthHandler:    handler.NewAuthHandler(userService, tokenManager),
		UserHandler:    handler.NewUserHandler(userService),
		MessageHandler: handler.NewMessageHandler(messageService),
		StatsHandler:   handler.NewStatsHandler(chatHub),
		TokenManager:   tokenManager,
		Hub:            chatHub,
		Config:         *config,
		Logger:         logger,
		mongoClient:    con,
	}, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	// Sync logger
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	// Close MongoDB connection pool
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoClient.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}
