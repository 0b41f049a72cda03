package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldservice/internal/geo"
)

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <polyline>",
		Short: "Print the points of an encoded polyline and its length",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points := geo.DecodePolyline(args[0])
			if len(points) == 0 {
				return fmt.Errorf("polyline decodes to no points")
			}

			out := cmd.OutOrStdout()
			for i, p := range points {
				fmt.Fprintf(out, "%d\t%s\n", i, formatCoordinate(p))
			}
			fmt.Fprintf(out, "total\t%.3f km\n", geo.PathDistance(points, 0))
			return nil
		},
	}
}
