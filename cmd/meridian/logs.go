package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/helios-hq/meridian/pkg/audit"
	"github.com/helios-hq/meridian/pkg/cli"
)

var logsFlags struct {
	campaignID string
	ruleID     string
	limit      int
	serverAddr string
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Query execution logs",
	Long: `Query the execution log of a running Meridian engine.

The command talks to the admin API of a meridian run process; the server
address defaults to the configured listen address.

Examples:
  # Most recent log entries
  meridian logs

  # Entries for one campaign
  meridian logs --campaign camp-001 --limit 20

  # Entries as JSON from a remote engine
  meridian logs --server 10.0.0.5:8080 --output json`,
	RunE: runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVar(&logsFlags.campaignID, "campaign", "", "filter by campaign ID")
	logsCmd.Flags().StringVar(&logsFlags.ruleID, "rule", "", "filter by rule ID")
	logsCmd.Flags().IntVar(&logsFlags.limit, "limit", 50, "maximum entries to return")
	logsCmd.Flags().StringVar(&logsFlags.serverAddr, "server", "", "admin API address (defaults to the configured listen address)")
}

// adminGet fetches a JSON document from the running engine's admin API.
func adminGet(path string, out any) error {
	addr := logsFlags.serverAddr
	if addr == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		addr = cfg.Server.ListenAddress
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get("http://" + addr + path)
	if err != nil {
		return fmt.Errorf("cannot reach the engine at %s (is 'meridian run' running?): %w", addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("admin API returned %s: %s", resp.Status, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func runLogs(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	query := url.Values{}
	if logsFlags.campaignID != "" {
		query.Set("campaignId", logsFlags.campaignID)
	}
	if logsFlags.ruleID != "" {
		query.Set("ruleId", logsFlags.ruleID)
	}
	if logsFlags.limit > 0 {
		query.Set("limit", strconv.Itoa(logsFlags.limit))
	}

	path := "/api/v1/logs"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var resp struct {
		Logs  []*audit.LogEntry `json:"logs"`
		Count int               `json:"count"`
	}
	if err := adminGet(path, &resp); err != nil {
		return err
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(os.Stdout, resp.Logs)
	}
	return cli.RenderLogs(os.Stdout, resp.Logs)
}
