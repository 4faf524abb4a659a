package cli

import (
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mintebank/minte/internal/api"
	"github.com/mintebank/minte/internal/config"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve INPUT_FILE",
	Short: "Execute an input file, then serve the resulting state over HTTP",
	Long: `Execute the bootstrap and command sequence from the input file, then expose
the final ledger state read-only: users, accounts, journals and Prometheus
metrics. Nothing served here mutates the ledger.`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	addrFlag, _ := cmd.Flags().GetString("addr")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addrFlag != "" {
		cfg.Serve.Addr = addrFlag
	}

	input, err := readInput(args[0])
	if err != nil {
		return err
	}

	eng, cleanup, err := buildEngine(cfg, input.Bootstrap)
	if err != nil {
		return err
	}
	defer cleanup()

	outputs := eng.Run(input.Commands)
	log.Printf("[cli] executed %d commands, %d output records", len(input.Commands), len(outputs))

	server := api.NewServer(eng.Registry())
	server.WithSplits(eng.Splits())
	if cfg.Serve.Metrics {
		server.EnableMetrics()
	}

	log.Printf("[cli] serving on http://%s", cfg.Serve.Addr)
	if err := http.ListenAndServe(cfg.Serve.Addr, server.Handler()); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
