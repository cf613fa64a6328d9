package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newQueryCmd(g *globalFlags) *cobra.Command {
	var (
		lat, lon float64
		at       string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Assess the accident risk at a point and time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var when time.Time
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --time %q: %w", at, err)
				}
				when = t
			}

			svc, _, err := g.service(cmd)
			if err != nil {
				return err
			}
			res, err := svc.Assess(lat, lon, when)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in degrees")
	cmd.Flags().StringVar(&at, "time", "", "query time, RFC3339 (default now)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func newSummaryCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Load the source and report the load summary and index sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := g.service(cmd)
			if err != nil {
				return err
			}
			st, err := svc.Summary()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), st)
		},
	}
}
