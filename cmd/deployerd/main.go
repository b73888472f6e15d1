// Command deployerd runs the signed remote file-deployment agent: it
// loads a server config, starts the gRPC Deploy service, and watches
// its config file for changes until a shutdown signal arrives.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"google.golang.org/grpc"

	"github.com/LinusChen-yf/adeploy/internal/configstore"
	"github.com/LinusChen-yf/adeploy/internal/logging"
	"github.com/LinusChen-yf/adeploy/internal/metrics"
	"github.com/LinusChen-yf/adeploy/internal/rpc"
	"github.com/LinusChen-yf/adeploy/internal/server"
)

const progVersion = "v1.0.0"

const usage = `
Options:
    -c, --config </path/to/toml>   Path to the server configuration file [default: deployerd.toml]
    -m, --metrics-addr <host:port> Optional address to serve Prometheus metrics on
    -v, --verbosity <0...4>        Increase details and frequency of progress messages [default: 1]
    -h, --help                     Show this help menu
    -V, --version                  Show version and packages

Documentation: <https://github.com/LinusChen-yf/adeploy>
`

func main() {
	var configFilePath string
	var metricsAddr string
	var verbosity int
	var versionFlagExists bool

	flag.StringVar(&configFilePath, "c", "deployerd.toml", "")
	flag.StringVar(&configFilePath, "config", "deployerd.toml", "")
	flag.StringVar(&metricsAddr, "m", "", "")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "")
	flag.IntVar(&verbosity, "v", 1, "")
	flag.IntVar(&verbosity, "verbosity", 1, "")
	flag.BoolVar(&versionFlagExists, "V", false, "")
	flag.BoolVar(&versionFlagExists, "version", false, "")

	flag.Usage = func() { fmt.Printf("Usage: %s [OPTIONS]...\n%s", os.Args[0], usage) }
	flag.Parse()

	if versionFlagExists {
		fmt.Printf("deployerd %s compiled using %s(%s) on %s architecture %s\n", progVersion, runtime.Version(), runtime.Compiler, runtime.GOOS, runtime.GOARCH)
		fmt.Println("Packages: google.golang.org/grpc github.com/pelletier/go-toml/v2 github.com/sirupsen/logrus github.com/google/uuid github.com/prometheus/client_golang crypto/ed25519 archive/tar compress/gzip")
		return
	}

	log := logging.New(logging.Verbosity(verbosity))

	store, err := configstore.Open(configFilePath, log)
	if err != nil {
		log.Fatalf("failed to load server config: %v", err)
	}
	store.Watch()
	defer store.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if metricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, metricsAddr); err != nil {
				log.Warnf("metrics server stopped: %v", err)
			}
		}()
	}

	addr := fmt.Sprintf(":%d", store.Port())
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("failed to bind '%s': %v", addr, err)
	}

	grpcServer := grpc.NewServer()
	rpc.RegisterDeployServiceServer(grpcServer, server.New(store, log))

	go func() {
		<-ctx.Done()
		log.Info("shutdown signal received, stopping server")
		grpcServer.GracefulStop()
	}()

	log.Infof("deployerd listening on %s", addr)
	if err := grpcServer.Serve(lis); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
