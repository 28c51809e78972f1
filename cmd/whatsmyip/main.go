package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	app "github.com/Flarenzy/whats-my-ip/internal/app"
	"github.com/Flarenzy/whats-my-ip/internal/console"
	"github.com/Flarenzy/whats-my-ip/internal/lookup"
)

func main() {
	configPath := flag.String("config", os.Getenv(app.ConfigEnv), "path to a YAML config file")
	once := flag.Bool("once", false, "look up once and exit instead of waiting for Enter")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := app.LoadConfigFile(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := app.NewLogger(cfg.Log, os.Stderr)
	provider, err := app.NewProvider(cfg.Lookup, logger)
	if err != nil {
		log.Fatalf("building lookup client: %v", err)
	}

	if *once {
		handler := lookup.NewHandler(nil, console.NewTextOutput(os.Stdout), provider, logger)
		// Failures are already logged by the handler.
		_, _ = handler.Activate().Wait(ctx)
		return
	}

	fmt.Fprintln(os.Stderr, "Press Enter to look up your public IP address (Ctrl+C to quit).")
	if err := console.Serve(ctx, os.Stdin, os.Stdout, provider, logger); err != nil {
		log.Fatalf("reading input: %v", err)
	}
}
