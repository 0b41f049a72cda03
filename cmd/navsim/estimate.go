package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fieldservice/internal/navigation"
)

func newEstimateCmd() *cobra.Command {
	var (
		from, to, at string
		speed        float64
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Straight-line distance and arrival time between two points",
		RunE: func(cmd *cobra.Command, args []string) error {
			origin, err := parseCoordinate(from)
			if err != nil {
				return err
			}
			destination, err := parseCoordinate(to)
			if err != nil {
				return err
			}

			now := time.Now()
			if at != "" {
				t, err := time.Parse("15:04", at)
				if err != nil {
					return fmt.Errorf("--at %q: want HH:MM", at)
				}
				now = time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
			}

			eta := navigation.Estimate(origin, destination, speed, now)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "distance\t%s\n", eta.DistanceText)
			fmt.Fprintf(out, "duration\t%s\n", eta.DurationText)
			fmt.Fprintf(out, "arrival\t%s\n", eta.ArrivalText)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "origin as lat,lng")
	cmd.Flags().StringVar(&to, "to", "", "destination as lat,lng")
	cmd.Flags().StringVar(&at, "at", "", "departure time as HH:MM (default now)")
	cmd.Flags().Float64Var(&speed, "speed", navigation.DefaultConfig().EstimateSpeedKmh, "average speed in km/h")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
