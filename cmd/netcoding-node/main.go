/* Single 2-XOR coded mesh node atop a real UDP socket */
package main

/*------------------------------------------------------------------
 *
 * Purpose:	Process entry point for one mesh node: read the YAML
 *		config, merge the optional .netcodingrc override and any
 *		command line flags over it, then run the UDP transport
 *		loop for the configured role until interrupted.
 *
 * Usage:	netcoding-node --config node.yaml [--id N]
 *			[--role normal|router|receiver] [--prob N]
 *			[--listen ADDR] [--peer ADDR]
 *			[--benchmark-file PATH] [-T FORMAT]
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"

	"github.com/doismellburning/netcoding/internal/benchmark"
	"github.com/doismellburning/netcoding/internal/meshconfig"
	"github.com/doismellburning/netcoding/internal/meshlog"
	"github.com/doismellburning/netcoding/internal/meshnet"
	"github.com/doismellburning/netcoding/internal/netcoding"
)

// rcFileName is the optional operator-local override file, looked up
// in the current directory.
const rcFileName = ".netcodingrc"

func main() {
	var configPath = pflag.StringP("config", "c", "", "Node configuration YAML file.")
	var id = pflag.Uint32("id", 0, "Override the node id from the config file.")
	var role = pflag.String("role", "", "Override the node role: normal, router or receiver.")
	var prob = pflag.Int("prob", -1, "Override the combination probability, 0-100.")
	var listen = pflag.String("listen", "", "Override the UDP listen address.")
	var peer = pflag.String("peer", "", "Override the UDP peer address packets are forwarded to.")
	var benchmarkFile = pflag.String("benchmark-file", "", "Override the benchmark CSV path. Empty disables recording.")
	var timestampFormat = pflag.StringP("timestamp-format", "T", "", "Precede received-packet log lines with 'strftime' format time stamp.")

	pflag.Parse()

	cfg := meshconfig.Default()
	if *configPath != "" {
		var err error
		cfg, err = meshconfig.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := meshconfig.ApplyLocalOverride(cfg, rcFileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Flags win over both files.
	if *id != 0 {
		cfg.ID = *id
	}
	if *role != "" {
		cfg.Role = *role
	}
	if *prob >= 0 {
		cfg.ProbToCombine = *prob
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *peer != "" {
		cfg.Peer = *peer
	}
	if *benchmarkFile != "" {
		cfg.BenchmarkFile = *benchmarkFile
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var stamper *strftime.Strftime
	if *timestampFormat != "" {
		stamper, err = strftime.New(*timestampFormat)
		if err != nil {
			fmt.Fprintf(os.Stderr, "netcoding-node: bad timestamp format %q: %v\n", *timestampFormat, err)
			os.Exit(1)
		}
	}

	logger := meshlog.Default(cfg.ID, cfg.Role)

	node := buildNode(cfg)

	var registry *benchmark.Registry
	if cfg.BenchmarkFile != "" {
		registry, err = benchmark.Create(cfg.BenchmarkFile)
		if err != nil {
			logger.Fatal("benchmark registry", "err", err)
		}
		defer registry.Close()
	}

	deliver := func(p netcoding.Packet) {
		now := time.Now()
		if stamper != nil {
			fmt.Printf("[%s] ", stamper.FormatString(now))
		}
		fmt.Printf("recovered %s\n", p)
		if registry != nil {
			if err := registry.Record(now, cfg.ID, p.Header[0]); err != nil {
				logger.Error("benchmark record", "err", err)
			}
		}
	}

	transport, err := meshnet.Listen(meshnet.Options{
		Listen:  cfg.Listen,
		Peer:    cfg.Peer,
		Node:    node,
		Rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		Decode:  cfg.Role == meshconfig.RoleReceiver,
		Deliver: deliver,
		Log:     logger,
	})
	if err != nil {
		logger.Fatal("listen", "err", err)
	}
	defer transport.Close()

	logger.Info("node up", "listen", cfg.Listen, "peer", cfg.Peer, "prob", cfg.ProbToCombine)

	if err := transport.Run(); err != nil {
		logger.Fatal("transport", "err", err)
	}
}

func buildNode(cfg meshconfig.Config) *netcoding.Node {
	switch cfg.Role {
	case meshconfig.RoleRouter:
		prob := cfg.ProbToCombine
		if prob == 0 {
			prob = -1 // take the default rate
		}
		return netcoding.NewCombinatoryNode(cfg.ID, prob)
	case meshconfig.RoleReceiver:
		return netcoding.NewNode(cfg.ID, netcoding.RoleReceiver, 0)
	default:
		return netcoding.NewNormalNode(cfg.ID)
	}
}
