package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nota-bridge/nota/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running bridge instance",
	Long:  `Query the health endpoint of a running nota instance and print its status.`,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/health", cfg.Addr()))
	if err != nil {
		return fmt.Errorf("nota is not reachable at %s: %w", cfg.Addr(), err)
	}
	defer resp.Body.Close()

	var health struct {
		OK           bool   `json:"ok"`
		CurrentTime  string `json:"current_time"`
		PendingCount int    `json:"pending_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}

	fmt.Fprintf(os.Stdout, "ok:      %v\n", health.OK)
	fmt.Fprintf(os.Stdout, "time:    %s\n", health.CurrentTime)
	fmt.Fprintf(os.Stdout, "pending: %d\n", health.PendingCount)
	return nil
}
