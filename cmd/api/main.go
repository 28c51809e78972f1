package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/Flarenzy/whats-my-ip/docs"
	app "github.com/Flarenzy/whats-my-ip/internal/app"
)

//	@title			What's my IP
//	@version		1.0
//	@description	Shows the public IP address of the host running the page server.

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:4040
//	@BasePath	/

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger := app.NewLogger(cfg.Log, os.Stdout)

	if err := app.Run(ctx, cfg, logger); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
