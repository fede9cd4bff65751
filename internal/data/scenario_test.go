package data

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "duel.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sc.Name != "duel" || sc.WorldSize != 1000 {
		t.Fatalf("header = %q %g", sc.Name, sc.WorldSize)
	}
	if sc.Player.Radius != 12 || len(sc.Orbs) != 2 || len(sc.Fuel) != 1 {
		t.Fatalf("contents = %+v", sc)
	}
	if sc.Orbs[0].Kind != "corona" || sc.Orbs[1].VX != 0.5 {
		t.Fatalf("orbs = %+v", sc.Orbs)
	}
	if err := sc.Validate(1000, 100); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadScenarioRejectsBadOrbs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	body := `
player: {x: 1, y: 1, radius: 0}
orbs:
  - {x: 5, y: 5, radius: -1}
  - {x: 5, y: 5, radius: 3, kind: blob}
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadScenario(path)
	if !errors.Is(err, ErrScenario) {
		t.Fatalf("expected ErrScenario, got %v", err)
	}
	for _, want := range []string{"player.radius", "orbs[0].radius", "orbs[1]"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
	if sc, _ := LoadScenario(path); sc != nil {
		t.Fatal("no scenario on error")
	}
}

func TestValidateAgainstWorld(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "duel.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	err = sc.Validate(300, 20)
	if !errors.Is(err, ErrScenario) {
		t.Fatalf("expected ErrScenario, got %v", err)
	}
	for _, want := range []string{"player at", "fuel[0]", "fuel_reserve"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadScenarioMissing(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "none.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}
