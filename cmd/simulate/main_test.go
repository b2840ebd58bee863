package main

import (
	"context"
	"strings"
	"testing"

	"github.com/milk9111/collide2d/ecs"
	"github.com/milk9111/collide2d/ecs/entity"
	"github.com/milk9111/collide2d/physics"
)

func TestSimulate(t *testing.T) {
	tests := []struct {
		name    string
		opts    options
		wantErr bool
	}{
		{"pit", options{scene: "scenes/pit", physics: "physics", ticks: 30}, false},
		{"sandbox on worker", options{scene: "scenes/sandbox", physics: "physics", ticks: 10, dt: 1.0 / 30, worker: true}, false},
		{"missing scene", options{scene: "scenes/nope", physics: "physics", ticks: 1}, true},
		{"missing physics", options{scene: "scenes/pit", physics: "nope", ticks: 1}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := simulate(context.Background(), tc.opts)
			if tc.wantErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSimulateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := simulate(ctx, options{scene: "scenes/pit", physics: "physics", ticks: 5})
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBodyReportNamesDynamicBodies(t *testing.T) {
	w := ecs.NewWorld()
	if _, err := entity.LoadScene(w, "scenes/pit", physics.DefaultConfig().EntityOptions()); err != nil {
		t.Fatal(err)
	}
	lines := bodyReport(w)
	if len(lines) != 1 {
		t.Fatalf("expected one dynamic body, got %v", lines)
	}
	if !strings.Contains(lines[0], "crate_0") {
		t.Fatalf("expected the crate to be named, got %q", lines[0])
	}
}
