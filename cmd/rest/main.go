package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"research-library-be/internal/bootstrap"
	"research-library-be/internal/config"
	"research-library-be/internal/server"
	"research-library-be/internal/tracer"
	"research-library-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Tracing)
	defer shutdownTracer(context.Background())

	// 3. Initialize Databases
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDB(database.GormConfig{
			DSN:             cfg.Database.Connection,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			SlowThreshold:   cfg.Database.SlowQuery,
			Verbose:         cfg.App.Environment != "production",
		})
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		if err := database.MigrateLibrary(db); err != nil {
			log.Panicf("Unable to migrate library tables: %v", err)
		}
		gormDB = db
	}

	kv, err := database.OpenBadger(database.BadgerConfig{
		Path:     cfg.Library.LocalStorePath,
		InMemory: cfg.Library.LocalStorePath == "",
	})
	if err != nil {
		log.Panicf("Unable to open guest store: %v", err)
	}
	defer kv.Close()

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, kv, cfg)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start Background Services
	if err := container.Start(ctx); err != nil {
		log.Panicf("Unable to start background services: %v", err)
	}

	// 6. Initialize & Run Server
	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		_ = srv.Shutdown()
	}()

	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
