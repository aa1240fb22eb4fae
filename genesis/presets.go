package genesis

import "fmt"

// Network presets bundle validated NetworkConfig values into named
// profiles so operators can bootstrap a network without supplying every
// flag. A preset is a starting point: CLI overrides are applied on top.

// DevPreset returns a configuration for local development networks:
// a fast two-second block period and no fee market, so transactions are
// free and the fee-market exception (zeroBaseFee) activates.
func DevPreset() NetworkConfig {
	return NetworkConfig{
		ChainID:            1337,
		GasLimit:           "0x1fffffffffffff", // effectively unlimited for dev workloads
		GasPrice:           "",                 // no fee market
		BlockPeriodSeconds: 2,
	}
}

// TestPreset returns a configuration for shared test networks. Block
// production is slower than dev to mimic production pacing, and a nominal
// gas price enables the fee market.
func TestPreset() NetworkConfig {
	return NetworkConfig{
		ChainID:            2020,
		GasLimit:           "0x1fffffffffffff",
		GasPrice:           "0x3b9aca00", // 1 gwei
		BlockPeriodSeconds: 5,
	}
}

// PresetByName looks up a preset by its string identifier. Returns an
// error if the name is unrecognized.
func PresetByName(name string) (NetworkConfig, error) {
	switch name {
	case "dev":
		return DevPreset(), nil
	case "test":
		return TestPreset(), nil
	default:
		return NetworkConfig{}, fmt.Errorf("unknown preset: %q (valid: dev, test)", name)
	}
}
