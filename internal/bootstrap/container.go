package bootstrap

import (
	"context"
	"log"

	"research-library-be/internal/config"
	"research-library-be/internal/controller"
	"research-library-be/internal/handler"
	"research-library-be/internal/pkg/logger"
	"research-library-be/internal/pkg/serverutils"
	"research-library-be/internal/repository/local"
	"research-library-be/internal/repository/unitofwork"
	"research-library-be/internal/service"
	"research-library-be/internal/websocket"
	"research-library-be/pkg/database"
	"research-library-be/pkg/library"
	"research-library-be/pkg/llm"
	"research-library-be/pkg/llm/factory"
	"research-library-be/pkg/metadata"
	pktNats "research-library-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/dgraph-io/badger/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	LibraryController   controller.ILibraryController
	MetadataController  controller.IMetadataController
	NarrativeController controller.INarrativeController
	OpsController       controller.IOpsController

	// Background Services (started by Start)
	ConsumerService service.IConsumerService
	ActivityService service.ILibraryActivityService
	WebSocketHub    *websocket.Hub

	Library *library.Library
	Logger  *logger.ZapLogger

	cfg     *config.Config
	kv      *badger.DB
	pubSub  *gochannel.GoChannel
	rdb     *redis.Client
	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
}

// NewContainer wires the application. db may be nil, in which case only
// guest (local) libraries are served.
func NewContainer(db *gorm.DB, kv *badger.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.New(logger.Options{
		FilePath:   cfg.App.LogFilePath,
		Level:      cfg.App.LogLevel,
		Production: cfg.App.Environment == "production",
	})
	// Per-connection chatter goes to its own file only.
	wsLogger := logger.New(logger.Options{FilePath: cfg.App.WsLogFilePath, FileOnly: true})

	backends := library.Backends{Local: local.NewRepositoryFactory(kv)}
	if db != nil {
		backends.Persistent = unitofwork.NewRepositoryFactory(db)
	} else {
		sysLogger.Warn("Bootstrap", "No database configured, persistent libraries are unavailable", nil)
	}

	// 2. Infrastructure
	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// NATS
	var eventPublisher service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Library
	// The hub needs the library to drop caches on changes from other
	// instances, and the library needs the hub to announce its own.
	var lib *library.Library
	wsHub := websocket.NewHub(rdb, cfg.Library.ChangesChannel, wsLogger, func(change library.Change) {
		lib.Invalidate(change.Scope())
	})
	notifier := service.NewChangeNotifier(wsHub, eventPublisher, sysLogger)

	lib = library.New(
		backends,
		library.NewCache(cfg.Library.CacheTTL, cfg.Library.CacheCleanup),
		library.Options{
			Logger:   sysLogger,
			Notifier: notifier,
			Validate: serverutils.ValidateRequest,
		},
	)

	// 4. Services
	extractor := metadata.NewExtractor(metadata.Config{
		Timeout:       cfg.Metadata.FetchTimeout,
		MaxBodyBytes:  cfg.Metadata.MaxBodyBytes,
		RatePerSecond: cfg.Metadata.RatePerSecond,
		Burst:         cfg.Metadata.Burst,
		UserAgent:     cfg.Metadata.UserAgent,
		AllowPrivate:  cfg.Metadata.AllowPrivate,
	})

	publisherService := service.NewPublisherService(cfg.Library.EnrichTopic, pubSub)
	if cfg.Library.EnrichOnSave {
		lib.Sources.OnSaved(service.EnrichOnSave(publisherService, sysLogger))
	}
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Library.EnrichTopic,
		lib,
		extractor,
		sysLogger,
	)

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  llmBaseURL(cfg.Ai),
		APIKey:   cfg.Ai.HuggingFaceKey,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	importService := service.NewImportService(backends.Local, backends.Persistent, lib, notifier, sysLogger)
	metadataService := service.NewMetadataService(extractor, cfg.Metadata.ResultTTL, sysLogger)
	narrativeService := service.NewNarrativeService(lib, llmProvider, cfg.Ai.NarrativeMaxTokens, sysLogger)

	var activityService service.ILibraryActivityService
	if natsSub != nil {
		activityService = service.NewLibraryActivityService(natsSub, sysLogger)
	}

	// 5. Handlers & Controllers
	feedHandler := handler.NewLibraryFeedHandler(wsHub, cfg.Auth.JwtSecret, wsLogger)

	checks := map[string]controller.HealthCheck{
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}
	if db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if natsPub != nil {
		checks["nats"] = natsPub.Ping
	}
	if pinger, ok := llmProvider.(llm.Pinger); ok {
		checks["llm"] = pinger.Ping
	}

	return &Container{
		LibraryController:   controller.NewLibraryController(cfg.Auth.JwtSecret, lib, importService, feedHandler.ServeWs),
		MetadataController:  controller.NewMetadataController(cfg.Auth.JwtSecret, metadataService),
		NarrativeController: controller.NewNarrativeController(cfg.Auth.JwtSecret, narrativeService),
		OpsController:       controller.NewOpsController(checks),

		ConsumerService: consumerService,
		ActivityService: activityService,
		WebSocketHub:    wsHub,

		Library: lib,
		Logger:  sysLogger,

		cfg:     cfg,
		kv:      kv,
		pubSub:  pubSub,
		rdb:     rdb,
		natsPub: natsPub,
		natsSub: natsSub,
	}
}

func llmBaseURL(ai config.AIConfig) string {
	if ai.LLMProvider == "huggingface" {
		return ai.HuggingFaceBaseURL
	}
	return ai.OllamaBaseURL
}

// Start runs the background workers until ctx is done.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)
	go database.RunBadgerGC(ctx, c.kv, c.cfg.Library.LocalStoreGC)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}
	if c.ActivityService != nil {
		if err := c.ActivityService.Start(ctx); err != nil {
			// The audit trail is auxiliary; the API keeps serving.
			c.Logger.Warn("Bootstrap", "Library activity worker not started", map[string]interface{}{"error": err})
		}
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	_ = c.pubSub.Close()
	_ = c.rdb.Close()
	_ = c.Logger.Sync()
}
