package artifacts

import (
	"fmt"
	"io"
	"strings"
)

// Print writes a human-readable grouped listing of the bootstrap result
// to w: validators, faucet, genesis document and static peers. Groups
// whose collection is empty are silently omitted. Sensitive values are
// printed: this target exists for local development where the operator
// owns every key.
func Print(w io.Writer, b *Bundle) {
	if len(b.Validators) > 0 {
		fmt.Fprintf(w, "Validators (%d):\n", len(b.Validators))
		for i, v := range b.Validators {
			fmt.Fprintf(w, "  [%d] address    %s\n", i, v.Address())
			fmt.Fprintf(w, "      publicKey  %s\n", v.PublicKeyHex())
			fmt.Fprintf(w, "      privateKey %s\n", v.PrivateKeyHex())
			fmt.Fprintf(w, "      enode      %s\n", v.EnodeURL(b.enodeHost(i), b.PeerPort))
		}
		fmt.Fprintln(w)
	}
	if b.Faucet != nil {
		fmt.Fprintln(w, "Faucet:")
		fmt.Fprintf(w, "  address    %s\n", b.Faucet.Address())
		fmt.Fprintf(w, "  privateKey %s\n", b.Faucet.PrivateKeyHex())
		fmt.Fprintln(w)
	}
	if b.Genesis != nil {
		fmt.Fprintln(w, "Genesis:")
		fmt.Fprintln(w, indent(b.Genesis.String(), "  "))
		fmt.Fprintln(w)
	}
	if peers := b.StaticPeers(); len(peers) > 0 {
		fmt.Fprintln(w, "Static peers:")
		for _, peer := range peers {
			fmt.Fprintf(w, "  %s\n", peer)
		}
	}
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
