package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jengzang/accident-risk-go/internal/config"
	"github.com/jengzang/accident-risk-go/internal/service"
)

// globalFlags override the loaded configuration
type globalFlags struct {
	configPath string
	kind       string
	path       string
	dsn        string
	timezone   string
	hasHeader  bool
	comma      string
	design     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "riskctl",
		Short:         "Query and simulate against the accident risk engine",
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "YAML config file (overrides RISK_CONFIG)")
	pf.StringVar(&g.kind, "source-kind", "", "raw source kind: csv, sqlite or postgres")
	pf.StringVar(&g.path, "source", "", "CSV file or sqlite database path")
	pf.StringVar(&g.dsn, "dsn", "", "postgres DSN")
	pf.StringVar(&g.timezone, "timezone", "", "timezone of source timestamps")
	pf.BoolVar(&g.hasHeader, "header", false, "CSV source has a header row")
	pf.StringVar(&g.comma, "comma", "", "CSV source field separator")
	pf.StringVar(&g.design, "design", "", "temporal index design: interval or grid")

	root.AddCommand(
		newQueryCmd(g),
		newSimulateCmd(g),
		newImportCmd(),
		newSummaryCmd(g),
	)
	return root
}

// load reads the configuration and applies command-line overrides
func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, error) {
	if g.configPath != "" {
		if err := os.Setenv("RISK_CONFIG", g.configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("source-kind", &cfg.Source.Kind, g.kind)
	set("source", &cfg.Source.Path, g.path)
	set("dsn", &cfg.Source.DSN, g.dsn)
	set("timezone", &cfg.Source.Timezone, g.timezone)
	set("comma", &cfg.Source.Comma, g.comma)
	set("design", &cfg.Query.TemporalDesign, g.design)
	if cmd.Flags().Changed("header") {
		cfg.Source.HasHeader = g.hasHeader
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// service loads the source and builds the engine once
func (g *globalFlags) service(cmd *cobra.Command) (*service.RiskService, *config.Config, error) {
	cfg, err := g.load(cmd)
	if err != nil {
		return nil, nil, err
	}
	svc, err := service.NewRiskService(cmd.Context(), service.NewBuilder(cfg))
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
