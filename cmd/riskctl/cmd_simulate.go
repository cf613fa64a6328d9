package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jengzang/accident-risk-go/internal/simulator"
)

func newSimulateCmd(g *globalFlags) *cobra.Command {
	opts := simulator.DefaultOptions()
	var (
		routePath string
		start     string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive a vehicle along a route and check the risk every few steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if start != "" {
				t, err := time.Parse(time.RFC3339, start)
				if err != nil {
					return fmt.Errorf("invalid --start %q: %w", start, err)
				}
				opts.Start = t
			}

			route, err := simulator.LoadRouteFile(cmd.Context(), routePath)
			if err != nil {
				return err
			}
			v, err := simulator.NewVehicle(route, opts.SpeedKmh, opts.Interval)
			if err != nil {
				return err
			}
			svc, _, err := g.service(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			onReport := func(r simulator.Report) {
				if asJSON {
					return
				}
				fmt.Fprintf(out, "step %4d  %6.2f%%  (%.5f, %.5f)  spatial=%d hour=%d season=%d  %s\n",
					r.Progress.Step, r.Progress.Percent,
					r.Progress.Position.Lat, r.Progress.Position.Lon,
					r.Result.Spatial, r.Result.SameHour, r.Result.SameSeason, r.Result.Level)
			}

			sum, err := simulator.Run(cmd.Context(), v, opts, svc.Assess, onReport)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, sum)
			}
			if sum.Arrived {
				fmt.Fprintf(out, "arrived after %d steps (%.1f km)\n", sum.Steps, v.Total()/1000)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&routePath, "route", "", "CSV file of lat,lon route points")
	f.Float64Var(&opts.SpeedKmh, "speed", opts.SpeedKmh, "vehicle speed in km/h")
	f.DurationVar(&opts.Interval, "interval", opts.Interval, "simulated time per step")
	f.IntVar(&opts.QueryEvery, "every", opts.QueryEvery, "assess risk every N steps")
	f.DurationVar(&opts.Tick, "tick", opts.Tick, "wall-clock pause between steps")
	f.IntVar(&opts.MaxSteps, "max-steps", opts.MaxSteps, "stop after N steps (0 drives to the end)")
	f.StringVar(&start, "start", "", "simulated start time, RFC3339 (default: query at wall-clock now)")
	f.BoolVar(&asJSON, "json", false, "print the run summary as JSON")
	_ = cmd.MarkFlagRequired("route")
	return cmd
}
