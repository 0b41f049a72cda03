package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fieldservice/internal/directions"
	"fieldservice/internal/domain"
	"fieldservice/internal/geo"
	"fieldservice/internal/navigation"
)

type simulateOptions struct {
	scenarioPath string
	from, to     string
	polyline     string
	apiKey       string
	tick         time.Duration
	speed        float64
	world        bool
}

func newSimulateCmd() *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play back a route and print every position update",
		Long: `Play back a route point by point.

The route comes from, in order of preference: --polyline or the scenario's
polyline, the Google Directions API when --api-key or GOOGLE_MAPS_API_KEY is
set, or a straight line between the two endpoints.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := opts.resolve(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := navigation.DefaultConfig()
			if sc.Tick > 0 {
				cfg.TickInterval = sc.Tick
			}
			if sc.SpeedKmh > 0 {
				cfg.NavigationSpeedKmh = sc.SpeedKmh
			}
			if sc.WorldBounds {
				cfg.Bounds = geo.WorldBounds()
			}

			var origin domain.Coordinate
			if sc.Origin != nil {
				origin = sc.Origin.coordinate()
			} else {
				origin = cfg.Fallback
			}

			sim := navigation.NewSimulator(cfg, opts.provider(sc), navigation.WithLogger(logger))
			return playback(ctx, cmd.OutOrStdout(), sim, origin, sc.Destination.coordinate())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.scenarioPath, "scenario", "", "YAML scenario file")
	f.StringVar(&opts.from, "from", "", "origin as lat,lng (default: fallback origin)")
	f.StringVar(&opts.to, "to", "", "destination as lat,lng")
	f.StringVar(&opts.polyline, "polyline", "", "encoded polyline to replay instead of fetching a route")
	f.StringVar(&opts.apiKey, "api-key", os.Getenv("GOOGLE_MAPS_API_KEY"), "Google Directions API key")
	f.DurationVar(&opts.tick, "tick", 0, "interval between route points")
	f.Float64Var(&opts.speed, "speed", 0, "speed in km/h for remaining-time estimates")
	f.BoolVar(&opts.world, "world", false, "accept destinations outside the service area")
	return cmd
}

// resolve merges the scenario file with flags. Flags given explicitly win.
func (o *simulateOptions) resolve(cmd *cobra.Command) (*scenario, error) {
	sc := &scenario{}
	if o.scenarioPath != "" {
		loaded, err := loadScenario(o.scenarioPath)
		if err != nil {
			return nil, err
		}
		sc = loaded
	}

	changed := cmd.Flags().Changed
	if changed("from") {
		c, err := parseCoordinate(o.from)
		if err != nil {
			return nil, err
		}
		sc.Origin = &point{Lat: c.Latitude, Lng: c.Longitude}
	}
	if changed("to") {
		c, err := parseCoordinate(o.to)
		if err != nil {
			return nil, err
		}
		sc.Destination = &point{Lat: c.Latitude, Lng: c.Longitude}
	}
	if changed("polyline") {
		sc.Polyline = o.polyline
	}
	if changed("tick") {
		sc.Tick = o.tick
	}
	if changed("speed") {
		sc.SpeedKmh = o.speed
	}
	if changed("world") {
		sc.WorldBounds = o.world
	}

	if sc.Destination == nil {
		return nil, fmt.Errorf("a destination is required: pass --to or --scenario")
	}
	return sc, nil
}

func (o *simulateOptions) provider(sc *scenario) directions.Provider {
	switch {
	case sc.Polyline != "":
		return directions.StaticProvider{Result: directions.Result{EncodedPolyline: sc.Polyline}}
	case o.apiKey != "":
		return directions.NewGoogleProvider(o.apiKey)
	default:
		return directions.StraightLineProvider{}
	}
}

// playback starts a session and prints its events until arrival or until
// ctx is cancelled.
func playback(ctx context.Context, out io.Writer, sim *navigation.Simulator, origin, destination domain.Coordinate) error {
	session, err := sim.Start(ctx, origin, destination)
	if err != nil {
		return err
	}

	route := session.Route()
	fmt.Fprintf(out, "route\t%d points\t%s\n", len(route.Points), routeLength(route))

	for {
		select {
		case <-ctx.Done():
			sim.Stop()
			fmt.Fprintln(out, "stopped")
			return nil

		case ev, ok := <-session.Events():
			if !ok {
				return nil
			}
			printEvent(out, ev)
		}
	}
}

func printEvent(out io.Writer, ev navigation.Event) {
	s := ev.State
	switch ev.Kind {
	case navigation.EventArrived:
		fmt.Fprintf(out, "arrived\t%s\n", formatCoordinate(s.Position))
	default:
		fmt.Fprintf(out, "tick\t%d/%d\t%s\t%.2f km\t%d min\n",
			s.Index+1, s.TotalPoints, formatCoordinate(s.Position), s.RemainingKm, s.RemainingMinutes)
	}
}

func routeLength(r domain.Route) string {
	if r.DistanceText != "" {
		return r.DistanceText
	}
	return fmt.Sprintf("%.1f km", geo.PathDistance(r.Points, 0))
}
