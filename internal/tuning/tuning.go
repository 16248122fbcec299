package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	Denom       string `yaml:"denom"`
	PoolAccount string `yaml:"pool_account"`

	Supply     Supply     `yaml:"supply"`
	RateLimits RateLimits `yaml:"rate_limits"`
	AutoMint   AutoMint   `yaml:"automint"`

	SnapshotEverySeconds int `yaml:"snapshot_every_seconds"`
	SnapshotsKeep        int `yaml:"snapshots_keep"`
}

type Supply struct {
	Infinite  bool   `yaml:"infinite"`
	MaxSupply uint64 `yaml:"max_supply"`
}

type RateLimits struct {
	PlayerMintsPerMinute uint32 `yaml:"player_mints_per_minute"`
}

type AutoMint struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	Amount          uint64 `yaml:"amount"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:      "1.0",
		Denom:                "urush",
		PoolAccount:          "rush-active-pool",
		Supply:               Supply{Infinite: true},
		RateLimits:           RateLimits{PlayerMintsPerMinute: 10},
		AutoMint:             AutoMint{IntervalSeconds: 60, Amount: 1000},
		SnapshotEverySeconds: 300,
		SnapshotsKeep:        48,
	}
}
