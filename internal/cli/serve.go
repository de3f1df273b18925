package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nota-bridge/nota/internal/api"
	"github.com/nota-bridge/nota/internal/app/engine"
	"github.com/nota-bridge/nota/internal/daemon"
	"github.com/nota-bridge/nota/internal/domain"
	"github.com/nota-bridge/nota/internal/infra/extract"
	"github.com/nota-bridge/nota/internal/infra/notion"
	"github.com/nota-bridge/nota/internal/infra/sqlite"
	"github.com/nota-bridge/nota/internal/infra/telegram"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the notification-to-ledger bridge",
	Long: `Start the HTTP intake server, the chat poll loop, and the correlation
engine. Pending and dedup state live in memory only: a restart drops them.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := sqlite.Open(cfg.Ledger.Path)
	if err != nil {
		return fmt.Errorf("open local database: %w", err)
	}
	defer db.Close()

	ledger, err := buildLedger(cfg, db)
	if err != nil {
		return err
	}

	chat, err := telegram.New(telegram.Config{
		Token:  cfg.Telegram.Token,
		ChatID: cfg.Telegram.ChatID,
	})
	if err != nil {
		return err
	}

	engCfg := engine.DefaultConfig()
	engCfg.AuthorizedSender = cfg.Telegram.ChatID
	engCfg.DedupWindow = cfg.Engine.DedupWindow.Duration
	engCfg.PendingTTL = cfg.Engine.PendingTTL.Duration
	engCfg.NotifyQueue = cfg.Engine.NotifyQueue
	engCfg.LedgerBackend = cfg.Ledger.Backend
	eng := engine.New(engCfg, chat, ledger)

	server := api.NewServer(eng, extract.New(cfg.Engine.AmountMarkers))
	if cfg.Metrics.Enabled {
		server.EnableMetrics()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go eng.Run(ctx)
	go chat.Poll(ctx, eng)

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("nota: listening on %s (ledger backend: %s)", cfg.Addr(), cfg.Ledger.Backend)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Printf("nota: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// buildLedger selects the ledger backend. The notion backend is wrapped with
// local archiving so every confirmed entry also lands in the audit table.
func buildLedger(cfg daemon.Config, db *sqlite.DB) (domain.Ledger, error) {
	switch cfg.Ledger.Backend {
	case "sqlite":
		return sqlite.NewLedger(db), nil
	case "notion":
		remote, err := notion.New(notion.Config{
			Token:      cfg.Ledger.Token,
			DatabaseID: cfg.Ledger.DatabaseID,
			CategoryID: cfg.Ledger.CategoryID,
		})
		if err != nil {
			return nil, err
		}
		return sqlite.NewArchiving(remote, db), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger.Backend)
	}
}
