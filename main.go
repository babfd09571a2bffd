package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/example/todo-api/modules/api"
	"github.com/example/todo-api/modules/auth"
	"github.com/example/todo-api/modules/cache"
	"github.com/example/todo-api/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== To-Do Tracker API ===")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	port := listenPort()

	authModule := auth.NewModule()
	taskModule := task.NewModule()
	apiModule := api.NewModule(port)
	apiModule.SetTaskModule(taskModule)

	// Register modules with the framework.
	// Order: independent modules first, then dependent modules.
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cacheModule := cache.NewModule(addr)
		app.Register(cacheModule)
		taskModule.SetCacheModule(cacheModule)
	}
	app.Register(authModule)
	app.Register(taskModule)
	app.Register(apiModule) // Depends on auth and task modules

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(port)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func listenPort() int {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			return port
		}
	}
	return 3000
}

func printStartupInfo(port int) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", port)
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  POST   /auth/register  - Register a new user")
	log.Println("  POST   /auth/login     - Login and get a token")
	log.Println("  GET    /health         - Health check")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer token):")
	log.Println("  GET    /users/me       - Get current user profile")
	log.Println("  PUT    /users/me       - Update current user profile")
	log.Println("  POST   /tasks          - Create a task")
	log.Println("  GET    /tasks          - List tasks (?status=&search=)")
	log.Println("  PUT    /tasks/:id      - Update a task")
	log.Println("  DELETE /tasks/:id      - Delete a task")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
