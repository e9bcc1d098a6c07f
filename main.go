package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/ghagevaibhav/CanvasFlow/modules/activity"
	"github.com/ghagevaibhav/CanvasFlow/modules/api"
	"github.com/ghagevaibhav/CanvasFlow/modules/auth"
	"github.com/ghagevaibhav/CanvasFlow/modules/store"
	"github.com/ghagevaibhav/CanvasFlow/modules/wsserver"
	"github.com/go-monolith/mono"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== CanvasFlow collaboration backend ===")

	// One database handle shared by the auth and store modules; each
	// migrates its own tables on Start.
	dbPath := os.Getenv("CANVASFLOW_DB_PATH")
	if dbPath == "" {
		dbPath = "canvasflow.db"
	}
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Register modules with the framework.
	// Order: providers first, then modules with dependencies
	// - auth: token verification + account flows (ServiceProviderModule)
	// - store: persistence gateway (ServiceProviderModule + EventEmitterModule)
	// - activity: event counters (EventConsumerModule)
	// - wsserver: real-time collaboration server (depends on auth, store)
	// - api: HTTP CRUD surface (depends on auth, store)
	app.Register(auth.NewModule(db))
	app.Register(store.NewModule(db))
	app.Register(activity.NewModule())
	app.Register(wsserver.NewModule())
	app.Register(api.NewModule())

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
			"database": func(_ context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	httpPort := os.Getenv("PORT")
	if httpPort == "" {
		httpPort = "3001"
	}
	wsPort := os.Getenv("WS_PORT")
	if wsPort == "" {
		wsPort = "8080"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API (http://localhost:%s):", httpPort)
	log.Println("  GET    /health               - Health check")
	log.Println("  POST   /signup               - Create an account")
	log.Println("  POST   /signin               - Sign in, returns a bearer token")
	log.Println("  POST   /room/create          - Create a room (auth)")
	log.Println("  GET    /room/chats/:roomId   - Recent messages, newest first (auth)")
	log.Println("  GET    /room/:slug           - Room lookup by slug (auth)")
	log.Println("")
	log.Printf("WebSocket (ws://localhost:%s/ws?token=<jwt>):", wsPort)
	log.Println("  Frames: join_room, leave_room, chat")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
