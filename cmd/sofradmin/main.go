// sofradmin is the command-line face of the Sofra admin session client.
//
// It drives the session coordinator the way the admin UI would: login,
// restore, permission queries, logout — all against the configured
// upstream service, with session state persisted in the local vault
// store so it survives across invocations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/sofrahq/sofra-admin-session/migrations"

	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/config"
	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/database"
	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/logging"
	"github.com/sofrahq/sofra-admin-session/internal/permissions"
	"github.com/sofrahq/sofra-admin-session/internal/session"
	"github.com/sofrahq/sofra-admin-session/internal/transport"
	"github.com/sofrahq/sofra-admin-session/internal/upstream"
	"github.com/sofrahq/sofra-admin-session/internal/vault"
)

// Version information - set at build time via ldflags
var version = "dev"

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

const usage = `Usage: sofradmin <command> [flags]

Commands:
  login -email <email> -password <password>   authenticate and start a session
  status                                      show session state and held permissions
  nav                                         list navigation entries visible to the user
  routes                                      list route accessibility for the user
  logout                                      end the session
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("no command given")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening vault store: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing vault store", "error", closeErr)
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	tc := transport.New(cfg.Upstream.BaseURL, cfg.UpstreamTimeout(), log)
	v := vault.New(db, tc, cfg.ExpiryMargin(), log)
	coordinator := session.New(v, upstream.New(tc), tc, permissions.DefaultRegistry(), session.Config{
		ExpiryMargin:  cfg.ExpiryMargin(),
		WatchInterval: cfg.WatchInterval(),
	}, log)
	defer coordinator.Close()

	// Every invocation starts by rehydrating whatever session the last
	// one left behind. No network involved.
	if err := coordinator.Restore(ctx); err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	switch args[0] {
	case "login":
		return runLogin(ctx, coordinator, args[1:])
	case "status":
		return runStatus(coordinator)
	case "nav":
		return runNav(coordinator)
	case "routes":
		return runRoutes(coordinator)
	case "logout":
		coordinator.Logout()
		fmt.Println("logged out")
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// loadConfig reads the config file when present, falling back to
// built-in defaults (still honouring SOFRA_* env overrides) so the CLI
// works out of the box against a local stub.
func loadConfig() (*config.Config, error) {
	path := os.Getenv("SOFRA_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runLogin(ctx context.Context, c *session.Coordinator, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("login requires -email and -password")
	}

	result, err := c.Login(ctx, *email, *password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("login failed: %s", result.Message)
	}

	fmt.Printf("logged in as %s (%s, role %s)\n",
		result.UserInfo.DisplayName, result.UserInfo.Email, result.UserInfo.Role)
	fmt.Printf("permissions: %s\n", strings.Join(c.Evaluator().PermissionKeys(), ", "))
	return nil
}

func runStatus(c *session.Coordinator) error {
	fmt.Printf("state: %s\n", c.State())

	sess := c.Session()
	if sess == nil {
		return nil
	}
	fmt.Printf("user: %s <%s>\n", sess.DisplayName, sess.Email)
	fmt.Printf("role: %s\n", sess.Role)

	keys := c.Evaluator().PermissionKeys()
	if len(keys) == 0 {
		fmt.Println("permissions: none")
		return nil
	}
	fmt.Println("permissions:")
	for _, key := range keys {
		fmt.Printf("  %s\n", key)
	}
	return nil
}

func runNav(c *session.Coordinator) error {
	items := c.Evaluator().AllowedNavigationItems()
	if len(items) == 0 {
		fmt.Println("no navigation entries visible")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%-12s -> /%s\n", item.Name, item.Route)
	}
	return nil
}

func runRoutes(c *session.Coordinator) error {
	ev := c.Evaluator()
	for _, name := range permissions.DefaultRegistry().RouteNames() {
		marker := "denied"
		if ev.CanAccessRoute(name) {
			marker = "allowed"
		}
		fmt.Printf("%-14s %s\n", name, marker)
	}
	return nil
}
