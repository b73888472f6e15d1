// Command deployctl pushes one or more configured packages to a named
// remote host over the signed Deploy RPC.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/LinusChen-yf/adeploy/internal/client"
)

const progVersion = "v1.0.0"

const usage = `
Usage: %s [OPTIONS]... <host> <package>...

Options:
    -c, --config </path/to/toml>  Path to the client configuration file [default: deployctl.toml]
    -h, --help                    Show this help menu
    -V, --version                 Show version and packages

Documentation: <https://github.com/LinusChen-yf/adeploy>
`

func main() {
	var configFilePath string
	var versionFlagExists bool

	flag.StringVar(&configFilePath, "c", "deployctl.toml", "")
	flag.StringVar(&configFilePath, "config", "deployctl.toml", "")
	flag.BoolVar(&versionFlagExists, "V", false, "")
	flag.BoolVar(&versionFlagExists, "version", false, "")

	flag.Usage = func() { fmt.Printf(usage, os.Args[0]) }
	flag.Parse()

	if versionFlagExists {
		fmt.Printf("deployctl %s compiled using %s(%s) on %s architecture %s\n", progVersion, runtime.Version(), runtime.Compiler, runtime.GOOS, runtime.GOARCH)
		fmt.Println("Packages: google.golang.org/grpc github.com/pelletier/go-toml/v2 github.com/fatih/color crypto/ed25519 archive/tar compress/gzip")
		return
	}

	args := flag.Args()
	if len(args) < 2 {
		flag.Usage()
		os.Exit(1)
	}
	host := args[0]
	packages := args[1:]

	execPath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve executable path: %v\n", err)
		os.Exit(1)
	}

	c, err := client.Load(configFilePath, execPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load client config: %v\n", err)
		os.Exit(1)
	}

	if err := c.DeployAll(context.Background(), host, packages); err != nil {
		fmt.Fprintf(os.Stderr, "deploy failed: %v\n", err)
		os.Exit(1)
	}
}
