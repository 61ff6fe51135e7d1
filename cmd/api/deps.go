package main

import (
	"context"
	"log"
	"time"

	"doughjo/internal/domain/account"
	"doughjo/internal/domain/banklink"
	"doughjo/internal/domain/chat"
	"doughjo/internal/domain/session"
	"doughjo/internal/infrastructure/llm"
	plaidclient "doughjo/internal/infrastructure/plaid"
	"doughjo/internal/infrastructure/postgres"
	"doughjo/internal/infrastructure/redisstore"
	httphandlers "doughjo/internal/interfaces/http"
	"doughjo/internal/shared/auth"
	"doughjo/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB        *postgres.DB
	SlotStore *redisstore.SlotStore

	// Handlers
	AuthHandler    *httphandlers.AuthHandler
	UserHandler    *httphandlers.UserHandler
	SessionHandler *httphandlers.SessionHandler
	AccountHandler *httphandlers.AccountHandler
	LinkHandler    *httphandlers.LinkHandler
	ChatHandler    *httphandlers.ChatHandler

	// Auth and sessions
	JWT      *auth.JWT
	Sessions *session.Manager

	// Services and repositories (for scheduler)
	LinkService *banklink.Service
	UserRepo    *postgres.UserRepository
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	// Connect to database and apply migrations
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	if err := postgres.Migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	accountRepo := postgres.NewAccountRepository(db)

	// Session slot store: Redis when enabled so duplicate sign-ins are
	// detected across instances, in-memory otherwise.
	var slots session.SlotStore
	var redisStore *redisstore.SlotStore
	if cfg.Redis.Enabled {
		redisStore, err = redisstore.NewSlotStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, 2*cfg.Session.MaxSession)
		if err != nil {
			db.Close()
			return nil, err
		}
		slots = redisStore
		log.Println("Connected to redis session slot store")
	} else {
		slots = session.NewMemorySlotStore()
		log.Println("Using in-memory session slot store")
	}

	// Session manager
	sessions := session.NewManager(session.Config{
		MaxInactivity:     cfg.Session.MaxInactivity,
		Warning:           cfg.Session.Warning,
		MaxSession:        cfg.Session.MaxSession,
		MaxExtensions:     cfg.Session.MaxExtensions,
		SlotCheckInterval: cfg.Session.SlotCheckInterval,
	}, slots, nil)

	// Aggregator client and link orchestrator
	plaidClient := plaidclient.NewClient(cfg.Plaid)
	if !plaidClient.Configured() {
		log.Println("Warning: aggregator credentials not set, bank linking disabled")
	}
	linkService := banklink.NewService(plaidClient, accountRepo)
	accountService := account.NewService(accountRepo)

	// Coach chat
	llmClient := llm.NewClient(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
	})
	chatService := chat.NewService(llmClient, userRepo, accountRepo)

	// Auth
	jwt := auth.NewJWT(cfg.JWT.Secret, 24*time.Hour)

	return &Dependencies{
		DB:             db,
		SlotStore:      redisStore,
		AuthHandler:    httphandlers.NewAuthHandler(userRepo, sessions, jwt),
		UserHandler:    httphandlers.NewUserHandler(userRepo),
		SessionHandler: httphandlers.NewSessionHandler(sessions),
		AccountHandler: httphandlers.NewAccountHandler(accountService, linkService),
		LinkHandler:    httphandlers.NewLinkHandler(linkService, userRepo),
		ChatHandler:    httphandlers.NewChatHandler(chatService),
		JWT:            jwt,
		Sessions:       sessions,
		LinkService:    linkService,
		UserRepo:       userRepo,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.Sessions != nil {
		d.Sessions.DisposeAll()
	}
	if d.SlotStore != nil {
		d.SlotStore.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
