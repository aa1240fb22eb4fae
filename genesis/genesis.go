// Package genesis builds the block-zero definition for Besu-family
// permissioned networks running IBFT2 or QBFT consensus.
//
// This package provides:
//   - The Document type, a JSON-serializable genesis block definition
//   - Chain configuration with fork-activation markers and fee-market flags
//   - Consensus sub-blocks (IBFT2/QBFT) with derived timing parameters
//   - The Assemble constructor, which merges faucet and caller allocations
//
// Every node joining the network must load a byte-identical genesis
// document, or the nodes diverge on block zero and never reach consensus.
// Document is therefore constructed once per invocation and never mutated
// afterwards; the only post-construction step is attaching the encoded
// validator extra-data, which returns a copy (see WithExtraData).
package genesis

import (
	"encoding/json"
	"fmt"
)

// Algorithm selects the BFT consensus family for the network.
type Algorithm string

const (
	// IBFT2 is the Istanbul BFT 2.0 consensus protocol.
	IBFT2 Algorithm = "ibft2"
	// QBFT is the successor protocol to IBFT2.
	QBFT Algorithm = "qbft"
)

// ParseAlgorithm converts a user-supplied string into an Algorithm.
// Returns an error for anything other than the two supported protocols.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case IBFT2, QBFT:
		return Algorithm(s), nil
	default:
		return "", fmt.Errorf("unknown consensus algorithm %q (valid: ibft2, qbft)", s)
	}
}

// Document is the complete genesis block definition. The JSON layout
// matches what the Besu client expects to load at startup.
type Document struct {
	Config     ChainConfig                  `json:"config"`
	Nonce      string                       `json:"nonce"`
	Timestamp  string                       `json:"timestamp"`
	GasLimit   string                       `json:"gasLimit"`
	Difficulty string                       `json:"difficulty"`
	MixHash    string                       `json:"mixHash"`
	Coinbase   string                       `json:"coinbase"`
	Alloc      map[string]AllocationAccount `json:"alloc"`
	ExtraData  string                       `json:"extraData"`
}

// ChainConfig carries the chain id, the fork-activation markers and the
// consensus sub-block. A freshly bootstrapped chain activates every fork at
// block zero, so all markers are zero. Exactly one of IBFT2/QBFT is set.
type ChainConfig struct {
	ChainID int64 `json:"chainId"`

	// Fork activation markers, all zero for a new chain.
	HomesteadBlock         int `json:"homesteadBlock"`
	EIP150Block            int `json:"eip150Block"`
	EIP155Block            int `json:"eip155Block"`
	EIP158Block            int `json:"eip158Block"`
	ByzantiumBlock         int `json:"byzantiumBlock"`
	ConstantinopleBlock    int `json:"constantinopleBlock"`
	ConstantinopleFixBlock int `json:"constantinopleFixBlock"`
	PetersburgBlock        int `json:"petersburgBlock"`
	IstanbulBlock          int `json:"istanbulBlock"`
	MuirGlacierBlock       int `json:"muirGlacierBlock"`
	BerlinBlock            int `json:"berlinBlock"`
	LondonBlock            int `json:"londonBlock"`
	ArrowGlacierBlock      int `json:"arrowGlacierBlock"`
	GrayGlacierBlock       int `json:"grayGlacierBlock"`

	// ZeroBaseFee disables the EIP-1559 fee market. Set exactly when the
	// network runs with a fixed (zero or absent) gas price.
	ZeroBaseFee bool `json:"zeroBaseFee"`

	// Optional EVM limits; omitted from the JSON when unset.
	ContractSizeLimit int64 `json:"contractSizeLimit,omitempty"`
	EVMStackSize      int   `json:"evmstacksize,omitempty"`

	IBFT2 *BFTConfig `json:"ibft2,omitempty"`
	QBFT  *BFTConfig `json:"qbft,omitempty"`
}

// AllocationAccount is one pre-funded account in the genesis allocation
// map. Balance is required; code and storage are only present for
// pre-deployed contracts.
type AllocationAccount struct {
	Balance string            `json:"balance"`
	Code    string            `json:"code,omitempty"`
	Storage map[string]string `json:"storage,omitempty"`
}

// WithExtraData returns a copy of the document carrying the encoded
// validator extra-data. The receiver is left untouched so a constructed
// document stays immutable.
func (d *Document) WithExtraData(extraData string) *Document {
	cp := *d
	cp.Alloc = make(map[string]AllocationAccount, len(d.Alloc))
	for addr, acc := range d.Alloc {
		cp.Alloc[addr] = acc
	}
	cp.ExtraData = extraData
	return &cp
}

// String returns an indented JSON representation, used for the terminal
// target and for debugging.
func (d *Document) String() string {
	b, _ := json.MarshalIndent(d, "", "  ")
	return string(b)
}
