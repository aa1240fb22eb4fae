package artifacts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgenet/forgenet/genesis"
	"github.com/forgenet/forgenet/keys"
)

const extraAllocAddr = "0xf17f52151EbEF6C7334FAD080c5704D77216b732"

func testBundle(t *testing.T, extraAlloc map[string]genesis.AllocationAccount) *Bundle {
	t.Helper()
	require := require.New(t)

	validators, err := keys.GenerateN(2)
	require.NoError(err)
	faucet, err := keys.Generate()
	require.NoError(err)

	doc, err := genesis.Assemble(genesis.QBFT, genesis.NetworkConfig{
		ChainID:            1337,
		FaucetAddress:      faucet.Address(),
		GasLimit:           "0x1fffffffffffff",
		BlockPeriodSeconds: 2,
	}, extraAlloc)
	require.NoError(err)

	return &Bundle{
		Validators: validators,
		Faucet:     faucet,
		Genesis:    doc,
		PeerHost:   "besu.svc",
	}
}

func byName(records []Record) map[string]Record {
	m := make(map[string]Record, len(records))
	for _, rec := range records {
		m[rec.Name] = rec
	}
	return m
}

// TestBuild verifies the full record sequence for a plain (non-minimal)
// publish: five records per validator (four public, one sensitive),
// three for the faucet, the genesis document and the static-peer list.
func TestBuild(t *testing.T) {
	require := require.New(t)

	bundle := testBundle(t, nil)
	records, err := Build(bundle, false)
	require.NoError(err)

	// 2 validators * 5 + 3 faucet + genesis + static-nodes.
	require.Len(records, 15)

	named := byName(records)

	// Validator names use the zero-based ordinal.
	for _, name := range []string{
		"validator-0-address", "validator-0-pubkey", "validator-0-nodeid", "validator-0-enode", "validator-0-key",
		"validator-1-address", "validator-1-pubkey", "validator-1-nodeid", "validator-1-enode", "validator-1-key",
	} {
		require.Contains(named, name)
	}

	// Private keys are the only sensitive validator records.
	require.True(named["validator-0-key"].Sensitive)
	require.False(named["validator-0-address"].Sensitive)
	require.True(named["faucet-key"].Sensitive)

	// The genesis record is immutable with the fail conflict policy.
	gen := named["besu-genesis"]
	require.True(gen.Immutable)
	require.Equal(OnConflictFail, gen.OnConflict)
	require.Equal("genesis.json", gen.DataKey)

	// The enode record embeds the pod-ordinal DNS convention.
	require.Contains(named["validator-1-enode"].Value, "@validator-1.besu.svc:30303")

	// Static peers cover every validator in order.
	var peers []string
	require.NoError(json.Unmarshal([]byte(named["static-nodes"].Value), &peers))
	require.Len(peers, 2)
	require.Equal(bundle.StaticPeers(), peers)
}

// TestBuildMinimal verifies the minimal publish mode: non-faucet
// allocations are zeroed in the shared genesis and published as their
// own immutable, annotated records instead.
func TestBuildMinimal(t *testing.T) {
	require := require.New(t)

	bundle := testBundle(t, map[string]genesis.AllocationAccount{
		extraAllocAddr: {Balance: "0x100"},
	})
	records, err := Build(bundle, true)
	require.NoError(err)
	named := byName(records)

	// The real allocation becomes its own annotated record, keyed by the
	// normalized address-derived name.
	alloc, ok := named["alloc-f17f52151ebef6c7334fad080c5704d77216b732"]
	require.True(ok)
	require.True(alloc.Immutable)
	require.Equal(AnnotationAllocationOverride, alloc.Annotation)
	require.Equal(extraAllocAddr, alloc.DataKey)

	var account genesis.AllocationAccount
	require.NoError(json.Unmarshal([]byte(alloc.Value), &account))
	require.Equal("0x100", account.Balance)

	// The shared genesis carries only a placeholder for it; the faucet
	// entry is untouched.
	var doc genesis.Document
	require.NoError(json.Unmarshal([]byte(named["besu-genesis"].Value), &doc))
	require.Equal("0x0", doc.Alloc[extraAllocAddr].Balance)
	require.Equal(genesis.DefaultFaucetBalance, doc.Alloc[bundle.Faucet.Address()].Balance)

	// The bundle's own genesis document is not mutated.
	require.Equal("0x100", bundle.Genesis.Alloc[extraAllocAddr].Balance)
}

// TestBuildInterfaces verifies interface bundles get the annotation value
// that distinguishes them from allocation overrides.
func TestBuildInterfaces(t *testing.T) {
	require := require.New(t)

	bundle := testBundle(t, nil)
	bundle.Interfaces = map[string]string{"Token.json": `{"abi":[]}`}
	bundle.IndexHash = "sha256:abc"

	records, err := Build(bundle, false)
	require.NoError(err)
	named := byName(records)

	bundleRec, ok := named["bundle-token.json"]
	require.True(ok)
	require.True(bundleRec.Immutable)
	require.Equal(AnnotationInterfaceBundle, bundleRec.Annotation)
	require.Equal("Token.json", bundleRec.DataKey)
	require.NotEqual(AnnotationAllocationOverride, bundleRec.Annotation)

	require.Equal("sha256:abc", named["index-hash"].Value)
}

// TestBuildValidation verifies an incomplete bundle is rejected.
func TestBuildValidation(t *testing.T) {
	require := require.New(t)

	bundle := testBundle(t, nil)
	bundle.Genesis = nil
	_, err := Build(bundle, false)
	require.ErrorContains(err, "genesis")

	bundle = testBundle(t, nil)
	bundle.Faucet = nil
	_, err = Build(bundle, false)
	require.ErrorContains(err, "faucet")
}
