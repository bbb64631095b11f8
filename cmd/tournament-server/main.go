// Command tournament-server runs the bot/admin/viewer HTTP and
// WebSocket API over a single tournament coordinator, graceful
// shutdown included. Mirrors the teacher's cmd/game-server/main.go
// composition (gin.Default, signal.Notify, blocking table/coordinator
// shutdown before exit).
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/quartz"

	"feltengine/config"
	"feltengine/internal/api"
	"feltengine/internal/sink"
	"feltengine/internal/tournament"
	"feltengine/pkg/rng"
)

func main() {
	cfg := config.Default()
	if pw := os.Getenv("TOURNAMENT_ADMIN_PASSWORD"); pw != "" {
		cfg.AdminPassword = pw
	} else {
		cfg.AdminPassword = "changeme"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	rngSystem, err := rng.NewSystem()
	if err != nil {
		log.Fatalf("failed to initialize RNG: %v", err)
	}

	hub := api.NewHub()
	coord := tournament.New(cfg, quartz.NewReal(), rngSystem, sink.ConnectionSink(hub))

	router := api.NewRouter(coord, hub, cfg.AdminPassword)

	port := os.Getenv("TOURNAMENT_SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		log.Printf("tournament server starting on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("shutting down tournament server...")
	coord.Shutdown()
}
