package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/mattjoyce/commitboard/internal/config"
	"github.com/mattjoyce/commitboard/internal/lock"
	"github.com/mattjoyce/commitboard/internal/log"
	"github.com/mattjoyce/commitboard/internal/notion"
	"github.com/mattjoyce/commitboard/internal/storage"
	"github.com/mattjoyce/commitboard/internal/store"
	"github.com/mattjoyce/commitboard/internal/tui"
	"github.com/mattjoyce/commitboard/internal/webhook"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "serve":
		os.Exit(runServe(args))
	case "list":
		os.Exit(runList(args))
	case "view":
		os.Exit(runView(args))
	case "watch":
		os.Exit(runWatch(args))
	case "version":
		fmt.Printf("commitboard version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`commitboard - GitHub webhook receiver with a Notion task board sync

Usage:
  commitboard <command> [flags]

Commands:
  serve     Start the webhook server in the foreground
  list      List recent webhooks from a running server
  view      Show one webhook in detail
  watch     Live terminal dashboard of incoming webhooks
  version   Show version information
  help      Show this help message

Use 'commitboard <command> --help' for command-specific flags.
`)
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "commitboard.yaml", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	// Secrets usually live in a local .env during development.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("commitboard starting", "version", version, "config", *configPath)

	if cfg.Webhook.Secret == "" {
		logger.Warn("GITHUB_WEBHOOK_SECRET is not set; all webhook deliveries will be rejected")
	}

	pidLockPath := pidLockPathFor(cfg.DBPath)
	pidLock, err := lock.AcquirePIDLock(pidLockPath)
	if err != nil {
		logger.Error("failed to acquire PID lock (another instance may be running)", "path", pidLockPath, "error", err)
		return 1
	}
	defer pidLock.Release()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := storage.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		return 1
	}
	defer db.Close()
	logger.Info("database opened", "path", cfg.DBPath)

	recordStore := store.New(db)

	var syncer webhook.TaskSyncer
	if cfg.Notion.Token != "" && cfg.Notion.DatabaseID != "" {
		client := notion.NewClient(cfg.Notion)
		syncer = notion.NewSyncer(client, log.WithComponent("notion"))
		logger.Info("notion sync enabled", "database_id", cfg.Notion.DatabaseID)
	} else {
		logger.Info("notion sync disabled (token or database id not configured)")
	}

	maxBody, err := cfg.Webhook.MaxBodyBytes()
	if err != nil {
		logger.Error("invalid webhook max_body_size", "error", err)
		return 1
	}

	server := webhook.New(webhook.Config{
		Listen:      cfg.Listen,
		Secret:      cfg.Webhook.Secret,
		MaxBodySize: maxBody,
	}, recordStore, syncer, log.WithComponent("webhook"))

	logger.Info("commitboard running (press Ctrl+C to stop)", "listen", cfg.Listen)

	if err := server.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("server failed", "error", err)
		return 1
	}

	logger.Info("commitboard stopped")
	return 0
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("limit", 0, "Maximum number of webhooks to show (server default 50)")
	server := fs.String("server", "", "Server base URL (default $COMMITBOARD_SERVER or http://localhost:5000)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	client := newAPIClient(serverURL(*server))
	records, err := client.listWebhooks(context.Background(), *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list webhooks: %v\n", err)
		return 1
	}

	if len(records) == 0 {
		fmt.Println("No webhooks recorded.")
		return 0
	}

	printWebhookTable(os.Stdout, records)
	return 0
}

func runView(args []string) int {
	// Flags may follow the positional id, like 'commitboard view 12 --payload'.
	var showPayload bool
	var server string
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.BoolVar(&showPayload, "payload", false, "Include the full decoded payload")
	fs.StringVar(&server, "server", "", "Server base URL (default $COMMITBOARD_SERVER or http://localhost:5000)")

	var id string
	var remainingArgs []string
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") && id == "" {
			id = arg
		} else {
			remainingArgs = append(remainingArgs, arg)
		}
	}

	if err := fs.Parse(remainingArgs); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	if id == "" {
		fmt.Fprintf(os.Stderr, "Usage: commitboard view <id> [--payload]\n")
		return 1
	}

	client := newAPIClient(serverURL(server))
	record, err := client.getWebhook(context.Background(), id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch webhook %s: %v\n", id, err)
		return 1
	}

	printWebhookDetail(os.Stdout, record, showPayload)
	return 0
}

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	server := fs.String("server", "", "Server base URL (default $COMMITBOARD_SERVER or http://localhost:5000)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	model := tui.NewMonitor(serverURL(*server))
	if _, err := tea.NewProgram(model).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
		return 1
	}
	return 0
}

// pidLockPathFor puts the PID lock next to the database file.
func pidLockPathFor(dbPath string) string {
	ext := filepath.Ext(dbPath)
	return strings.TrimSuffix(dbPath, ext) + ".pid"
}

// serverURL resolves the server base URL for client commands: flag, then
// COMMITBOARD_SERVER, then the default.
func serverURL(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("COMMITBOARD_SERVER"); v != "" {
		return v
	}
	return "http://localhost:5000"
}
