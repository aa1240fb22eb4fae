package artifacts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/forgenet/forgenet/genesis"
	"github.com/forgenet/forgenet/keys"
)

// Bundle is the completed bootstrap result the builder flattens into
// records.
type Bundle struct {
	// Validators in generation order. Record names use the zero-based
	// ordinal (generation index minus one), matching the pod-ordinal
	// convention of the orchestrator that later mounts them.
	Validators []*keys.Account
	Faucet     *keys.Account
	Genesis    *genesis.Document

	// Interfaces maps bundle file names to their contents (contract ABI
	// bundles and similar). Optional.
	Interfaces map[string]string

	// IndexHash is an optional externally computed content hash published
	// alongside the artifacts.
	IndexHash string

	// PeerHost is the DNS suffix for validator enode URLs; the host of
	// validator N is "validator-N.<PeerHost>". Defaults to "localhost"
	// (flat, no ordinal prefix) when empty.
	PeerHost string
	PeerPort int
}

func (b *Bundle) enodeHost(ordinal int) string {
	if b.PeerHost == "" {
		return "localhost"
	}
	return fmt.Sprintf("validator-%d.%s", ordinal, b.PeerHost)
}

// StaticPeers returns the enode URLs of all validators, in validator
// order.
func (b *Bundle) StaticPeers() []string {
	peers := make([]string, 0, len(b.Validators))
	for i, v := range b.Validators {
		peers = append(peers, v.EnodeURL(b.enodeHost(i), b.PeerPort))
	}
	return peers
}

// Build flattens the bundle into the full record sequence.
//
// In minimal mode (used for the clustered-store target) every non-faucet
// allocation in the genesis is replaced by a zero-balance placeholder and
// published individually as its own immutable, annotated record instead.
// This keeps pre-funded balances out of the shared genesis object; an
// external compile step merges them back in using the discovery
// annotation.
func Build(b *Bundle, minimal bool) ([]Record, error) {
	if b.Genesis == nil {
		return nil, fmt.Errorf("bundle has no genesis document")
	}
	if b.Faucet == nil {
		return nil, fmt.Errorf("bundle has no faucet account")
	}

	var records []Record
	for i, v := range b.Validators {
		prefix := fmt.Sprintf("validator-%d", i)
		records = append(records,
			Record{Name: prefix + "-address", DataKey: "address", Value: v.Address(), OnConflict: OnConflictSkip},
			Record{Name: prefix + "-pubkey", DataKey: "publicKey", Value: v.PublicKeyHex(), OnConflict: OnConflictSkip},
			Record{Name: prefix + "-nodeid", DataKey: "nodeId", Value: v.NodeID(), OnConflict: OnConflictSkip},
			Record{Name: prefix + "-enode", DataKey: "enode", Value: v.EnodeURL(b.enodeHost(i), b.PeerPort), OnConflict: OnConflictSkip},
			Record{Name: prefix + "-key", DataKey: "privateKey", Value: v.PrivateKeyHex(), Sensitive: true, OnConflict: OnConflictSkip},
		)
	}

	records = append(records,
		Record{Name: "faucet-address", DataKey: "address", Value: b.Faucet.Address(), OnConflict: OnConflictSkip},
		Record{Name: "faucet-pubkey", DataKey: "publicKey", Value: b.Faucet.PublicKeyHex(), OnConflict: OnConflictSkip},
		Record{Name: "faucet-key", DataKey: "privateKey", Value: b.Faucet.PrivateKeyHex(), Sensitive: true, OnConflict: OnConflictSkip},
	)

	doc := b.Genesis
	if minimal {
		stripped, allocRecords, err := stripAllocations(b.Genesis, b.Faucet.Address())
		if err != nil {
			return nil, err
		}
		doc = stripped
		records = append(records, allocRecords...)
	}
	genesisJSON, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize genesis: %w", err)
	}
	records = append(records, Record{
		Name:       "besu-genesis",
		DataKey:    "genesis.json",
		Value:      string(genesisJSON),
		Immutable:  true,
		OnConflict: OnConflictFail,
	})

	for name, content := range b.Interfaces {
		records = append(records, Record{
			Name:       "bundle-" + strings.ToLower(name),
			DataKey:    name,
			Value:      content,
			Immutable:  true,
			OnConflict: OnConflictFail,
			Annotation: AnnotationInterfaceBundle,
		})
	}

	peersJSON, err := json.Marshal(b.StaticPeers())
	if err != nil {
		return nil, fmt.Errorf("serialize static peers: %w", err)
	}
	records = append(records, Record{
		Name:       "static-nodes",
		DataKey:    "static-nodes.json",
		Value:      string(peersJSON),
		OnConflict: OnConflictSkip,
	})

	if b.IndexHash != "" {
		records = append(records, Record{
			Name:       "index-hash",
			DataKey:    "hash",
			Value:      b.IndexHash,
			OnConflict: OnConflictSkip,
		})
	}
	return records, nil
}

// stripAllocations returns a copy of the genesis with every non-faucet
// allocation replaced by a zero-balance placeholder, plus one annotated
// record per real allocation, keyed by a normalized address-derived name.
func stripAllocations(doc *genesis.Document, faucetAddress string) (*genesis.Document, []Record, error) {
	faucet := common.HexToAddress(faucetAddress)
	stripped := doc.WithExtraData(doc.ExtraData)

	var records []Record
	for addr, account := range doc.Alloc {
		if common.HexToAddress(addr) == faucet {
			continue
		}
		accountJSON, err := json.Marshal(account)
		if err != nil {
			return nil, nil, fmt.Errorf("serialize allocation %s: %w", addr, err)
		}
		records = append(records, Record{
			Name:       allocRecordName(addr),
			DataKey:    common.HexToAddress(addr).Hex(),
			Value:      string(accountJSON),
			Immutable:  true,
			OnConflict: OnConflictFail,
			Annotation: AnnotationAllocationOverride,
		})
		stripped.Alloc[addr] = genesis.AllocationAccount{Balance: "0x0"}
	}
	return stripped, records, nil
}

// allocRecordName derives the store object name for one allocation
// record: lower-case address without the 0x prefix, prefixed "alloc-".
// Store object names must be DNS-compatible, which rules out the raw
// checksum-cased address.
func allocRecordName(addr string) string {
	return "alloc-" + strings.ToLower(strings.TrimPrefix(addr, "0x"))
}
