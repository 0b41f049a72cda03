package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"fieldservice/internal/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Coordinate
		wantErr bool
	}{
		{in: "1.3546,103.9450", want: domain.Coordinate{Latitude: 1.3546, Longitude: 103.945}},
		{in: " -33.8688 , 151.2093 ", want: domain.Coordinate{Latitude: -33.8688, Longitude: 151.2093}},
		{in: "1.35", wantErr: true},
		{in: "north,103.9", wantErr: true},
		{in: "1.35,east", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseCoordinate(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseCoordinate(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseCoordinate(%q): %v", tt.in, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("parseCoordinate(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestLoadScenario(t *testing.T) {
	got, err := loadScenario(filepath.Join("testdata", "canonical.yaml"))
	if err != nil {
		t.Fatalf("loadScenario: %v", err)
	}

	want := &scenario{
		Name:        "canonical polyline replay",
		Destination: &point{Lat: 43.252, Lng: -126.453},
		Polyline:    "_p~iF~ps|U_ulLnnqC_mqNvxq`@",
		Tick:        time.Millisecond,
		SpeedKmh:    60,
		WorldBounds: true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scenario mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadScenario_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown field":       "destination: {lat: 1.3, lng: 103.9}\nspeed: 40\n",
		"missing destination": "polyline: abc\n",
		"negative tick":       "destination: {lat: 1.3, lng: 103.9}\ntick: -1s\n",
		"empty":               "",
	}

	dir := t.TempDir()
	for name, body := range tests {
		path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".yaml")
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := loadScenario(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestDecodeCmd(t *testing.T) {
	out, err := run(t, "decode", "_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{
		"0\t38.50000,-120.20000",
		"1\t40.70000,-120.95000",
		"2\t43.25200,-126.45300",
	}
	if diff := cmp.Diff(want, lines[:3]); diff != "" {
		t.Errorf("decoded points mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(lines[3], "total\t") {
		t.Errorf("expected total line, got %q", lines[3])
	}

	if _, err := run(t, "decode", "?"); err == nil {
		t.Error("expected error for polyline with no points")
	}
}

func TestEstimateCmd(t *testing.T) {
	out, err := run(t, "estimate", "--from", "1.3546,103.9450", "--to", "1.3236,103.9273", "--at", "09:00")
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	want := "distance\t4.0 km\nduration\t6 mins\narrival\t09:06\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("estimate output mismatch (-want +got):\n%s", diff)
	}

	if _, err := run(t, "estimate", "--from", "1.3546,103.9450", "--to", "1.3236,103.9273", "--at", "9am"); err == nil {
		t.Error("expected error for malformed --at")
	}
	if _, err := run(t, "estimate", "--from", "1.3546,103.9450"); err == nil {
		t.Error("expected error without --to")
	}
}

func TestSimulateCmd_Scenario(t *testing.T) {
	out, err := run(t, "simulate", "--scenario", filepath.Join("testdata", "canonical.yaml"))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected route line, 3 ticks and arrival, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "route\t3 points\t") {
		t.Errorf("unexpected route line %q", lines[0])
	}
	for i, line := range lines[1:4] {
		if !strings.HasPrefix(line, "tick\t") {
			t.Errorf("line %d: expected tick, got %q", i+1, line)
		}
	}
	if lines[4] != "arrived\t43.25200,-126.45300" {
		t.Errorf("unexpected arrival line %q", lines[4])
	}
}

func TestSimulateCmd_StraightLine(t *testing.T) {
	out, err := run(t, "simulate",
		"--from", "1.3546,103.9450",
		"--to", "1.3236,103.9273",
		"--tick", "1ms",
		"--api-key", "",
	)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{
		"tick\t1/2\t1.35460,103.94500",
		"tick\t2/2\t1.32360,103.92730\t0.00 km\t0 min",
		"arrived\t1.32360,103.92730",
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got:\n%s", out)
	}
	if !strings.HasPrefix(lines[1], want[0]) {
		t.Errorf("first tick %q, want prefix %q", lines[1], want[0])
	}
	if diff := cmp.Diff(want[1:], lines[2:]); diff != "" {
		t.Errorf("playback mismatch (-want +got):\n%s", diff)
	}
}

func TestSimulateCmd_Errors(t *testing.T) {
	if _, err := run(t, "simulate", "--tick", "1ms"); err == nil {
		t.Error("expected error without destination")
	}
	// Sydney is outside the default service area.
	if _, err := run(t, "simulate", "--to", "-33.8688,151.2093", "--api-key", ""); err == nil {
		t.Error("expected error for out-of-area destination")
	}
}

func TestScenarioOriginFallback(t *testing.T) {
	sc := &scenario{Origin: &point{Lat: 1.3, Lng: 103.9}}
	got := sc.Origin.coordinate()
	want := domain.Coordinate{Latitude: 1.3, Longitude: 103.9}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("coordinate mismatch (-want +got):\n%s", diff)
	}
}
