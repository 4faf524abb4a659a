package cli

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mintebank/minte/internal/config"
	"github.com/mintebank/minte/internal/engine"
	"github.com/mintebank/minte/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("output", "o", "", "Write output records to this file instead of stdout")
}

var runCmd = &cobra.Command{
	Use:   "run INPUT_FILE",
	Short: "Execute a bootstrap + command sequence",
	Long: `Execute an input file containing the bootstrap lists (users, commerciants,
exchange rates) and the ordered command sequence, and emit the output records
as a JSON array.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

// inputFile is the on-disk input shape: bootstrap lists plus the command
// sequence.
type inputFile struct {
	engine.Bootstrap
	Commands []engine.Command `json:"commands"`
}

func runRun(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
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
	if outputs == nil {
		outputs = []engine.Output{}
	}

	encoded, err := json.MarshalIndent(outputs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode outputs: %w", err)
	}
	encoded = append(encoded, '\n')

	if outputPath == "" {
		_, err = os.Stdout.Write(encoded)
		return err
	}
	if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	log.Printf("[cli] wrote %d output records to %s", len(outputs), outputPath)
	return nil
}

func readInput(path string) (*inputFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", path, err)
	}
	var input inputFile
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parse input %s: %w", path, err)
	}
	return &input, nil
}

// buildEngine assembles the engine with the audit sink when configured. The
// returned cleanup closes the sink.
func buildEngine(cfg config.Config, boot engine.Bootstrap) (*engine.Engine, func(), error) {
	var sink engine.AuditSink
	cleanup := func() {}

	if cfg.Audit.Enabled {
		db, err := sqlite.Open(cfg.Audit.Path)
		if err != nil {
			return nil, nil, err
		}
		sink = db
		cleanup = func() {
			if err := db.Close(); err != nil {
				log.Printf("[cli] closing audit db: %v", err)
			}
		}
	}

	eng, err := engine.New(cfg.Engine, boot, sink)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return eng, cleanup, nil
}
