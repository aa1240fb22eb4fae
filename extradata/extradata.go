// Package extradata encodes the initial validator set into the
// consensus-specific extra-data field of the genesis block.
//
// The field is an RLP-encoded 5-element list. Nodes compare extra-data
// byte-for-byte, so the encoding must be deterministic and the caller must
// supply validator addresses in a stable, agreed ordering (generation
// order by convention). The element layout differs between IBFT2 and QBFT:
//
//	IBFT2: [vanity, validators, vote, round, seals]
//	QBFT:  [vanity, validators, votes, round, seals]
//
// where vanity is a fixed 32-byte zero field, the vote/round/seal slots
// are empty at genesis, and IBFT2 carries the round as a 4-byte zero
// integer while QBFT carries an empty byte string.
package extradata

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/forgenet/forgenet/genesis"
)

// VanityLength is the size of the zeroed vanity field at element 0.
const VanityLength = 32

// ibft2RoundLength is the width of the IBFT2 round number field.
const ibft2RoundLength = 4

// Compute encodes the ordered validator address list into the 0x-prefixed
// extra-data hex string for the given consensus algorithm.
//
// Every address must be a well-formed 0x-prefixed 20-byte hex string;
// malformed input fails before any encoding happens. Identical algorithm
// and identical ordered address list always yield the identical output.
func Compute(algorithm genesis.Algorithm, validatorAddresses []string) (string, error) {
	validators := make([]common.Address, 0, len(validatorAddresses))
	for i, addr := range validatorAddresses {
		if !strings.HasPrefix(addr, "0x") || !common.IsHexAddress(addr) {
			return "", fmt.Errorf("validator address %d (%q) is not a 0x-prefixed 20-byte hex string", i, addr)
		}
		validators = append(validators, common.HexToAddress(addr))
	}

	vanity := make([]byte, VanityLength)
	var fields []interface{}
	switch algorithm {
	case genesis.IBFT2:
		fields = []interface{}{
			vanity,
			validators,
			[]byte{},                       // vote, unused at genesis
			make([]byte, ibft2RoundLength), // round number, zero
			[]interface{}{},                // committer seals
		}
	case genesis.QBFT:
		fields = []interface{}{
			vanity,
			validators,
			[]interface{}{}, // vote list, unused at genesis
			[]byte{},        // round number
			[]interface{}{}, // seals
		}
	default:
		return "", fmt.Errorf("unknown consensus algorithm %q", algorithm)
	}

	encoded, err := rlp.EncodeToBytes(fields)
	if err != nil {
		return "", fmt.Errorf("encode extra-data: %w", err)
	}
	return hexutil.Encode(encoded), nil
}
