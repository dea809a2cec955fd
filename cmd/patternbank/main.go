// Package main implements the patternbank CLI: discovery runs, outcome
// recording, knowledge-base health, and analytics.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/patternbank/internal/config"
	"github.com/fyrsmithlabs/patternbank/internal/knowledge"
	"github.com/fyrsmithlabs/patternbank/internal/logging"
)

var (
	// configPath overrides the config file location.
	configPath string
	// kbDir overrides the knowledge-base directory.
	kbDir string
	// version information, set at build time.
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "patternbank",
	Short: "Self-improving knowledge base for UI test automation patterns",
	Long: `patternbank discovers how a web project is built, synthesizes
candidate automation patterns from what it finds, and learns from real
test outcomes which of them actually work.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <kb dir>/config.yml)")
	rootCmd.PersistentFlags().StringVar(&kbDir, "kb-dir", "", "knowledge-base directory (default ~/.patternbank)")
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(pruneCmd)
}

// app bundles everything a command needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *knowledge.Store
}

// newApp loads config, builds the logger, and opens the store. Every
// command starts here.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if kbDir != "" {
		cfg.Knowledge.Dir = kbDir
	}
	if err := config.EnsureKnowledgeDir(cfg.Knowledge.Dir); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  knowledge.NewStore(cfg.Knowledge.Dir, logger),
	}, nil
}

// printJSON renders v as indented JSON on stdout, the output format of
// every reporting command.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
