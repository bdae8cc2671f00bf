// sofrastubd runs the development stub of the Sofra service's auth
// surface: credential exchange and permission lookups over fixture
// accounts. Point sofradmin (or the admin UI) at it for local work.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/config"
	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/logging"
	"github.com/sofrahq/sofra-admin-session/internal/stubserver"
)

// Version information - set at build time via ldflags
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	host := flag.String("host", "127.0.0.1", "listen host")
	port := flag.Int("port", 8090, "listen port")
	secret := flag.String("secret", "", "JWT signing secret (dev default when empty)")
	ttl := flag.Duration("token-ttl", 15*time.Minute, "issued token lifetime")
	flag.Parse()

	log := logging.New(config.Logging{Level: "info", Format: "text", Output: "stderr"}, version)
	log.Info("starting Sofra stub service", "version", version)

	srv := stubserver.New(stubserver.Config{
		Host:      *host,
		Port:      *port,
		JWTSecret: *secret,
		TokenTTL:  *ttl,
	}, nil, log)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting stub server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Error("error closing stub server", "error", err)
		}
	}()

	log.Info("stub service ready, waiting for shutdown signal",
		"address", fmt.Sprintf("%s:%d", *host, *port),
	)
	<-ctx.Done()

	log.Info("shutdown signal received")
	return nil
}
