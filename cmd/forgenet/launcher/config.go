// This file maps CLI context to the bootstrap configuration: preset
// first, then flag overrides on top.

package launcher

import (
	"encoding/json"
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/forgenet/forgenet/genesis"
)

// Config aggregates everything one bootstrap run needs.
type Config struct {
	Algorithm  genesis.Algorithm
	Network    genesis.NetworkConfig
	ExtraAlloc map[string]genesis.AllocationAccount
	Validators int
	PeerHost   string

	Output     string // terminal | file | kubernetes
	OutDir     string
	Namespace  string
	Kubeconfig string
	Minimal    bool
}

// makeConfig merges the named preset with CLI flag overrides and loads
// the optional extra-allocation file. Values it returns are validated as
// far as the CLI layer can; Assemble re-checks the hex scalars.
func makeConfig(ctx *cli.Context) (Config, error) {
	algorithm, err := genesis.ParseAlgorithm(ctx.String("consensus"))
	if err != nil {
		return Config{}, err
	}
	network, err := genesis.PresetByName(ctx.String("preset"))
	if err != nil {
		return Config{}, err
	}

	if ctx.IsSet("chainid") {
		network.ChainID = ctx.Int64("chainid")
	}
	if ctx.IsSet("blockperiod") {
		network.BlockPeriodSeconds = ctx.Int("blockperiod")
	}
	if ctx.IsSet("gaslimit") {
		network.GasLimit = ctx.String("gaslimit")
	}
	if ctx.IsSet("gasprice") {
		network.GasPrice = ctx.String("gasprice")
	}

	cfg := Config{
		Algorithm:  algorithm,
		Network:    network,
		Validators: ctx.Int("validators"),
		PeerHost:   ctx.String("peerhost"),
		Output:     ctx.String("output"),
		OutDir:     ctx.String("outdir"),
		Namespace:  ctx.String("namespace"),
		Kubeconfig: ctx.String("kubeconfig"),
		Minimal:    ctx.Bool("minimal"),
	}
	if cfg.Validators <= 0 {
		return Config{}, fmt.Errorf("validators must be positive, got %d", cfg.Validators)
	}
	switch cfg.Output {
	case "terminal", "file", "kubernetes":
	default:
		return Config{}, fmt.Errorf("unknown output target %q (valid: terminal, file, kubernetes)", cfg.Output)
	}

	if file := ctx.String("allocfile"); file != "" {
		alloc, err := loadAllocFile(file)
		if err != nil {
			return Config{}, err
		}
		cfg.ExtraAlloc = alloc
	}
	return cfg, nil
}

func loadAllocFile(path string) (map[string]genesis.AllocationAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alloc file: %w", err)
	}
	var alloc map[string]genesis.AllocationAccount
	if err := json.Unmarshal(data, &alloc); err != nil {
		return nil, fmt.Errorf("parse alloc file %s: %w", path, err)
	}
	return alloc, nil
}
