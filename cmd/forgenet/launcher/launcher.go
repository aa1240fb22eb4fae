// Package launcher wires the CLI surface to the bootstrap pipeline:
// validated flags -> key generation -> genesis assembly -> extra-data
// encoding -> artifact records -> the chosen target.
package launcher

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/forgenet/forgenet/artifacts"
	"github.com/forgenet/forgenet/extradata"
	"github.com/forgenet/forgenet/flags"
	"github.com/forgenet/forgenet/genesis"
	"github.com/forgenet/forgenet/keys"
	"github.com/forgenet/forgenet/kube"
)

// Launch parses the arguments and runs the selected command.
func Launch(args []string) error {
	app := flags.NewApp()
	app.Flags = append(app.Flags, flags.NetworkFlags()...)
	app.Flags = append(app.Flags, flags.ArtifactFlags()...)
	app.Flags = append(app.Flags, flags.LogFlags()...)
	app.Action = bootstrap
	app.Commands = []cli.Command{
		{
			Name:   "sync",
			Usage:  "Retrieve previously published annotated artifacts from a namespace",
			Action: sync,
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "kind",
					Usage: "Artifact kind to retrieve (interface-bundle|allocation-override)",
					Value: artifacts.AnnotationInterfaceBundle,
				},
				cli.StringFlag{
					Name:  "outdir",
					Usage: "Directory the retrieved entries are written to",
					Value: ".",
				},
				cli.StringFlag{
					Name:  "namespace",
					Usage: "Kubernetes namespace (defaults to the pod's service account namespace)",
				},
				cli.StringFlag{
					Name:  "kubeconfig",
					Usage: "Path to a kubeconfig file",
				},
			}, flags.LogFlags()...),
		},
		{
			Name:   "fetch",
			Usage:  "Print the data entries of one published public artifact",
			Action: fetch,
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "name",
					Usage: "Artifact name, e.g. besu-genesis or static-nodes",
				},
				cli.StringFlag{
					Name:  "namespace",
					Usage: "Kubernetes namespace (defaults to the pod's service account namespace)",
				},
				cli.StringFlag{
					Name:  "kubeconfig",
					Usage: "Path to a kubeconfig file",
				},
			}, flags.LogFlags()...),
		},
	}
	return app.Run(args)
}

func bootstrap(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	log := setupLogging(ctx.String("log.format"), ctx.Int("log.verbosity"))

	validators, err := keys.GenerateN(cfg.Validators)
	if err != nil {
		return err
	}
	faucet, err := keys.Generate()
	if err != nil {
		return err
	}
	cfg.Network.FaucetAddress = faucet.Address()

	doc, err := genesis.Assemble(cfg.Algorithm, cfg.Network, cfg.ExtraAlloc)
	if err != nil {
		return err
	}
	addresses := make([]string, 0, len(validators))
	for _, v := range validators {
		addresses = append(addresses, v.Address())
	}
	extra, err := extradata.Compute(cfg.Algorithm, addresses)
	if err != nil {
		return err
	}
	doc = doc.WithExtraData(extra)

	bundle := &artifacts.Bundle{
		Validators: validators,
		Faucet:     faucet,
		Genesis:    doc,
		PeerHost:   cfg.PeerHost,
	}
	log.WithFields(logrus.Fields{
		"consensus":  string(cfg.Algorithm),
		"chainId":    cfg.Network.ChainID,
		"validators": len(validators),
		"output":     cfg.Output,
	}).Info("bootstrap assembled")

	switch cfg.Output {
	case "terminal":
		artifacts.Print(os.Stdout, bundle)
		return nil
	case "file":
		records, err := artifacts.Build(bundle, false)
		if err != nil {
			return err
		}
		target, err := artifacts.NewFileTarget(cfg.OutDir)
		if err != nil {
			return err
		}
		if err := target.Write(records); err != nil {
			return err
		}
		log.WithField("dir", target.Dir()).Info("artifacts written")
		return nil
	case "kubernetes":
		records, err := artifacts.Build(bundle, cfg.Minimal)
		if err != nil {
			return err
		}
		client, err := kube.Connect(cfg.Kubeconfig)
		if err != nil {
			return err
		}
		kctx := kube.NewContext(context.Background(), client, kube.ResolveNamespace(cfg.Namespace), log)
		_, err = kube.NewPublisher(kctx).Publish(records)
		return err
	default:
		return fmt.Errorf("unknown output target %q", cfg.Output)
	}
}

func sync(ctx *cli.Context) error {
	log := setupLogging(ctx.String("log.format"), ctx.Int("log.verbosity"))

	kind := ctx.String("kind")
	switch kind {
	case artifacts.AnnotationInterfaceBundle, artifacts.AnnotationAllocationOverride:
	default:
		return fmt.Errorf("unknown artifact kind %q (valid: %s, %s)",
			kind, artifacts.AnnotationInterfaceBundle, artifacts.AnnotationAllocationOverride)
	}

	client, err := kube.Connect(ctx.String("kubeconfig"))
	if err != nil {
		return err
	}
	kctx := kube.NewContext(context.Background(), client, kube.ResolveNamespace(ctx.String("namespace")), log)
	totals, err := kube.NewSynchronizer(kctx).Sync(kind, kube.DirSink{Dir: ctx.String("outdir")})
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"objects": totals.Objects,
		"entries": totals.Entries,
	}).Info("sync finished")
	return nil
}

func fetch(ctx *cli.Context) error {
	log := setupLogging(ctx.String("log.format"), ctx.Int("log.verbosity"))

	name := ctx.String("name")
	if name == "" {
		return fmt.Errorf("--name is required")
	}
	client, err := kube.Connect(ctx.String("kubeconfig"))
	if err != nil {
		return err
	}
	kctx := kube.NewContext(context.Background(), client, kube.ResolveNamespace(ctx.String("namespace")), log)
	data, err := kube.Fetch(kctx, name)
	if err != nil {
		return err
	}
	for _, value := range data {
		fmt.Fprintln(os.Stdout, value)
	}
	return nil
}
