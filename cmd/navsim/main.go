// Command navsim decodes polylines, estimates arrival times, and plays back
// navigation routes from the terminal.
//
// Usage:
//
//	navsim decode '_p~iF~ps|U_ulLnnqC_mqNvxq`@'
//	navsim estimate --from 1.3546,103.9450 --to 1.3236,103.9273
//	navsim simulate --scenario testdata/bedok.yaml
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fieldservice/internal/domain"
)

// logger is set by the root command's PersistentPreRunE.
var logger = zap.NewNop()

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "navsim",
		Short:        "Route simulation tools for field workers",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				logger = zap.NewNop()
				return nil
			}
			l, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log simulator activity to stderr")

	root.AddCommand(
		newDecodeCmd(),
		newEstimateCmd(),
		newSimulateCmd(),
	)
	return root
}

// parseCoordinate parses "lat,lng".
func parseCoordinate(s string) (domain.Coordinate, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinate{}, fmt.Errorf("coordinate %q: want lat,lng", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("coordinate %q: latitude: %w", s, err)
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("coordinate %q: longitude: %w", s, err)
	}
	return domain.Coordinate{Latitude: la, Longitude: ln}, nil
}

func formatCoordinate(c domain.Coordinate) string {
	return fmt.Sprintf("%.5f,%.5f", c.Latitude, c.Longitude)
}
