// Package keys generates and formats the secp256k1 key material a
// bootstrapped network needs: one key pair per validator plus one faucet
// wallet. It decouples the rest of the tool from curve details; callers
// only see hex strings, addresses and enode identifiers.
package keys

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultP2PPort is the listen port assumed when building enode URLs.
const DefaultP2PPort = 30303

// Account wraps one generated secp256k1 key pair together with its
// derived address.
type Account struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// Generate creates a fresh random account.
func Generate() (*Account, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &Account{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// GenerateN creates n fresh accounts in generation order. The returned
// slice order is significant: it is the ordering embedded into the
// genesis extra-data.
func GenerateN(n int) ([]*Account, error) {
	accounts := make([]*Account, 0, n)
	for i := 0; i < n; i++ {
		account, err := Generate()
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// FromHex reconstructs an account from a 0x-prefixed private key hex
// string, as produced by PrivateKeyHex.
func FromHex(s string) (*Account, error) {
	raw, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	return &Account{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// Address returns the checksum-cased 0x-prefixed account address.
func (a *Account) Address() string {
	return a.address.Hex()
}

// PrivateKeyHex returns the 0x-prefixed 32-byte private key scalar.
func (a *Account) PrivateKeyHex() string {
	return hexutil.Encode(crypto.FromECDSA(a.key))
}

// PublicKeyHex returns the 0x-prefixed uncompressed public key
// (65 bytes, leading 0x04).
func (a *Account) PublicKeyHex() string {
	return hexutil.Encode(crypto.FromECDSAPub(&a.key.PublicKey))
}

// NodeID returns the devp2p node identifier: the 64-byte public key hex
// without prefix byte and without "0x".
func (a *Account) NodeID() string {
	return common.Bytes2Hex(crypto.FromECDSAPub(&a.key.PublicKey)[1:])
}

// EnodeURL builds the enode URL for this account at the given host.
// A zero port falls back to DefaultP2PPort.
func (a *Account) EnodeURL(host string, port int) string {
	if port == 0 {
		port = DefaultP2PPort
	}
	return fmt.Sprintf("enode://%s@%s:%d", a.NodeID(), host, port)
}
