package flags

import (
	cli "gopkg.in/urfave/cli.v1"
)

// NetworkFlags covers the chain parameters the genesis assembler needs.

func NetworkFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "consensus",
			Usage: "Consensus algorithm (ibft2|qbft)",
			Value: "qbft",
		},
		cli.StringFlag{
			Name:  "preset",
			Usage: "Named network preset to start from (dev|test)",
			Value: "dev",
		},
		cli.Int64Flag{
			Name:  "chainid",
			Usage: "Chain id (overrides the preset)",
		},
		cli.IntFlag{
			Name:  "validators",
			Usage: "Number of validator key pairs to generate",
			Value: 4,
		},
		cli.IntFlag{
			Name:  "blockperiod",
			Usage: "Target seconds between blocks (overrides the preset)",
		},
		cli.StringFlag{
			Name:  "gaslimit",
			Usage: "Block gas limit as a hex scalar (overrides the preset)",
		},
		cli.StringFlag{
			Name:  "gasprice",
			Usage: "Fixed gas price as a hex scalar; empty or 0x0 disables the fee market",
		},
		cli.StringFlag{
			Name:  "allocfile",
			Usage: "JSON file with extra genesis allocations (address -> account)",
		},
		cli.StringFlag{
			Name:  "peerhost",
			Usage: "DNS suffix for validator enode URLs",
		},
	}
}

// ArtifactFlags covers output target selection and the Kubernetes
// artifact exchange.

func ArtifactFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "output",
			Usage: "Artifact target (terminal|file|kubernetes)",
			Value: "terminal",
		},
		cli.StringFlag{
			Name:  "outdir",
			Usage: "Root directory for the file target",
			Value: ".",
		},
		cli.StringFlag{
			Name:  "namespace",
			Usage: "Kubernetes namespace (defaults to the pod's service account namespace)",
		},
		cli.StringFlag{
			Name:  "kubeconfig",
			Usage: "Path to a kubeconfig file (defaults to in-cluster config, then the standard location)",
		},
		cli.BoolFlag{
			Name:  "minimal",
			Usage: "Publish allocations as individual records and a stripped genesis (kubernetes target only)",
		},
	}
}

// LogFlags covers logging configuration.

func LogFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "log.format",
			Usage: "Log output format (text|json)",
			Value: "text",
		},
		cli.IntFlag{
			Name:  "log.verbosity",
			Usage: "Logging verbosity (0=panic,1=fatal,2=error,3=warn,4=info,5=debug)",
			Value: 4,
		},
	}
}
