package genesis

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Fixed header scalars for a BFT genesis block. The mix hash is the magic
// value Besu requires on BFT chains ("istanbul mix hash").
const (
	genesisNonce      = "0x0"
	genesisTimestamp  = "0x0"
	genesisDifficulty = "0x1"
	genesisMixHash    = "0x63746963616c2062797a616e74696e65206661756c7420746f6c6572616e6365"
	genesisCoinbase   = "0x0000000000000000000000000000000000000000"
)

// DefaultFaucetBalance is the starting balance allocated to the faucet
// wallet: 10,000,000 ether in wei.
const DefaultFaucetBalance = "0x84595161401484a000000"

// NetworkConfig carries the validated inputs the assembler needs. Values
// arrive pre-validated from the CLI layer or a preset; Assemble still
// rejects malformed hex and non-positive ids rather than coercing them.
type NetworkConfig struct {
	ChainID            int64
	FaucetAddress      string
	GasLimit           string // hex scalar, e.g. "0x1fffffffffffff"
	GasPrice           string // hex scalar; empty or "0x0" means no fee market
	BlockPeriodSeconds int
	EVMStackSize       int   // optional, 0 means client default
	ContractSizeLimit  int64 // optional, 0 means client default
}

// Assemble builds the genesis document for the given consensus algorithm.
//
// The faucet address always receives DefaultFaucetBalance; extraAlloc is
// merged on top with last-write-wins semantics, so supplying the faucet
// address in extraAlloc deliberately overrides the faucet balance.
//
// ExtraData on the returned document is empty: validator identities are
// typically generated after the base document shape is decided, so the
// encoded validator set is attached later via WithExtraData.
func Assemble(algorithm Algorithm, cfg NetworkConfig, extraAlloc map[string]AllocationAccount) (*Document, error) {
	if cfg.ChainID <= 0 {
		return nil, fmt.Errorf("chain id must be positive, got %d", cfg.ChainID)
	}
	if !common.IsHexAddress(cfg.FaucetAddress) {
		return nil, fmt.Errorf("faucet address %q is not a valid address", cfg.FaucetAddress)
	}
	if _, err := hexutil.DecodeUint64(cfg.GasLimit); err != nil {
		return nil, fmt.Errorf("gas limit %q: %w", cfg.GasLimit, err)
	}
	if cfg.BlockPeriodSeconds <= 0 {
		return nil, fmt.Errorf("block period must be positive, got %d", cfg.BlockPeriodSeconds)
	}
	gasPrice := uint64(0)
	if cfg.GasPrice != "" {
		p, err := hexutil.DecodeUint64(cfg.GasPrice)
		if err != nil {
			return nil, fmt.Errorf("gas price %q: %w", cfg.GasPrice, err)
		}
		gasPrice = p
	}

	alloc := map[string]AllocationAccount{
		common.HexToAddress(cfg.FaucetAddress).Hex(): {Balance: DefaultFaucetBalance},
	}
	for addr, account := range extraAlloc {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("allocation address %q is not a valid address", addr)
		}
		normalized, err := normalizeAccount(addr, account)
		if err != nil {
			return nil, err
		}
		alloc[common.HexToAddress(addr).Hex()] = normalized
	}

	config := ChainConfig{
		ChainID:           cfg.ChainID,
		ZeroBaseFee:       gasPrice == 0,
		ContractSizeLimit: cfg.ContractSizeLimit,
		EVMStackSize:      cfg.EVMStackSize,
	}
	switch algorithm {
	case IBFT2:
		config.IBFT2 = NewBFTConfig(cfg.BlockPeriodSeconds)
	case QBFT:
		config.QBFT = NewBFTConfig(cfg.BlockPeriodSeconds)
	default:
		return nil, fmt.Errorf("unknown consensus algorithm %q", algorithm)
	}

	return &Document{
		Config:     config,
		Nonce:      genesisNonce,
		Timestamp:  genesisTimestamp,
		GasLimit:   cfg.GasLimit,
		Difficulty: genesisDifficulty,
		MixHash:    genesisMixHash,
		Coinbase:   genesisCoinbase,
		Alloc:      alloc,
		ExtraData:  "",
	}, nil
}

// normalizeAccount validates the hex scalars of one allocation entry and
// normalizes an empty storage map to absent.
func normalizeAccount(addr string, account AllocationAccount) (AllocationAccount, error) {
	if account.Balance == "" {
		return AllocationAccount{}, fmt.Errorf("allocation %s: balance is required", addr)
	}
	if _, err := hexutil.DecodeBig(account.Balance); err != nil {
		return AllocationAccount{}, fmt.Errorf("allocation %s: balance %q: %w", addr, account.Balance, err)
	}
	if account.Code != "" {
		if _, err := hexutil.Decode(account.Code); err != nil {
			return AllocationAccount{}, fmt.Errorf("allocation %s: code: %w", addr, err)
		}
	}
	if len(account.Storage) == 0 {
		account.Storage = nil
	}
	return account, nil
}
