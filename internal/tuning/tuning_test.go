package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	raw := `
protocol_version: "1.0"
denom: "urush"
pool_account: "rush-active-pool"
supply:
  infinite: false
  max_supply: 1000000
rate_limits:
  player_mints_per_minute: 6
automint:
  interval_seconds: 30
  amount: 500
snapshot_every_seconds: 120
snapshots_keep: 12
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tune, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.Denom != "urush" || tune.PoolAccount != "rush-active-pool" {
		t.Fatalf("denom/pool: %+v", tune)
	}
	if tune.Supply.Infinite || tune.Supply.MaxSupply != 1000000 {
		t.Fatalf("supply: %+v", tune.Supply)
	}
	if tune.RateLimits.PlayerMintsPerMinute != 6 {
		t.Fatalf("rate limit: %+v", tune.RateLimits)
	}
	if tune.AutoMint.IntervalSeconds != 30 || tune.AutoMint.Amount != 500 {
		t.Fatalf("automint: %+v", tune.AutoMint)
	}
	if tune.SnapshotEverySeconds != 120 || tune.SnapshotsKeep != 12 {
		t.Fatalf("snapshot cadence: %d keep %d", tune.SnapshotEverySeconds, tune.SnapshotsKeep)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.Denom == "" || d.PoolAccount == "" {
		t.Fatalf("defaults incomplete: %+v", d)
	}
	if !d.Supply.Infinite {
		t.Fatalf("defaults should start in infinite supply mode")
	}
}
