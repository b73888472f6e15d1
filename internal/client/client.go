// Package client implements the command-line push client: config load,
// remote resolution, archive/sign/send per package, and transcript
// rendering (spec §4.9, component C9).
package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/LinusChen-yf/adeploy/internal/apperrors"
	"github.com/LinusChen-yf/adeploy/internal/archiver"
	"github.com/LinusChen-yf/adeploy/internal/configstore"
	"github.com/LinusChen-yf/adeploy/internal/rpc"
	"github.com/LinusChen-yf/adeploy/internal/signer"
)

// defaultMaxArchiveSize is used when the remote entry sets no positive
// max_file_size; the server's own limit is not consulted (Open Question
// (c), see DESIGN.md).
const defaultMaxArchiveSize = 100 * 1024 * 1024

// keyDirName is the canonical key-material directory next to the
// client executable.
const keyDirName = ".key"

var (
	infoColor  = color.New(color.FgCyan)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

// Client pushes packages named in a ClientConfig to a chosen remote.
type Client struct {
	cfg    *configstore.ClientConfig
	signer *signer.Signer
	pubKey string
}

// Load reads configPath and loads (or generates, next to execPath) the
// client's Ed25519 key pair.
func Load(configPath, execPath string) (*Client, error) {
	cfg, err := configstore.ParseClientConfig(configPath)
	if err != nil {
		return nil, err
	}

	keyDir := filepath.Join(filepath.Dir(execPath), keyDirName)
	pubPath := filepath.Join(keyDir, "id_ed25519.pub")
	privPath := filepath.Join(keyDir, "id_ed25519")

	if _, statErr := os.Stat(privPath); os.IsNotExist(statErr) {
		if err := os.MkdirAll(keyDir, 0700); err != nil {
			return nil, apperrors.WrapFileSystem(err, "failed to create key directory '%s'", keyDir)
		}
		if err := signer.Generate(pubPath, privPath); err != nil {
			return nil, err
		}
	}

	s, err := signer.LoadSigner(privPath)
	if err != nil {
		return nil, err
	}
	pub, err := signer.LoadPublicKey(pubPath)
	if err != nil {
		return nil, err
	}

	return &Client{cfg: cfg, signer: s, pubKey: pub}, nil
}

// DeployAll packages and sends each of packageNames, in order, to host.
// It stops at the first package whose in-band response is unsuccessful
// and returns a non-nil error once any package failed or errored.
func (c *Client) DeployAll(ctx context.Context, host string, packageNames []string) error {
	remote, err := configstore.ResolveRemote(c.cfg, host)
	if err != nil {
		return err
	}

	maxSize := int64(defaultMaxArchiveSize)
	if remote.MaxFileSize > 0 {
		maxSize = remote.MaxFileSize
	}

	dialCtx := ctx
	var cancel context.CancelFunc
	if remote.Timeout > 0 {
		dialCtx, cancel = context.WithTimeout(ctx, time.Duration(remote.Timeout)*time.Second)
		defer cancel()
	}

	addr := fmt.Sprintf("%s:%d", host, remote.Port)
	conn, err := grpc.DialContext(dialCtx, addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return apperrors.WrapNetwork(err, "failed to connect to '%s'", addr)
	}
	defer conn.Close()

	stub := rpc.NewDeployServiceClient(conn)

	for _, name := range packageNames {
		sources, ok := c.cfg.Packages[name]
		if !ok {
			return apperrors.NewConfig("package '%s' is not defined in the client config", name)
		}

		data, hash, err := archiver.Package(name, sources.Sources)
		if err != nil {
			return err
		}
		if int64(len(data)) > maxSize {
			return apperrors.NewDeploy("archive for package '%s' is %d bytes, exceeding the effective maximum of %d", name, len(data), maxSize)
		}

		sig := c.signer.Sign(data)
		req := &rpc.DeployRequest{
			PackageName: name,
			FileData:    data,
			FileHash:    hash,
			Signature:   base64.StdEncoding.EncodeToString(sig),
			PublicKey:   c.pubKey,
		}

		callCtx := ctx
		if remote.Timeout > 0 {
			var callCancel context.CancelFunc
			callCtx, callCancel = context.WithTimeout(ctx, time.Duration(remote.Timeout)*time.Second)
			defer callCancel()
		}

		resp, err := stub.Deploy(callCtx, req)
		if err != nil {
			if status.Code(err) == codes.Unauthenticated {
				errorColor.Println("server rejected this client's key.")
				infoColor.Printf("add this to allowed_keys: %s\n", c.pubKey)
			}
			return apperrors.WrapNetwork(err, "deploy call for package '%s' failed", name)
		}

		printTranscript(name, resp)
		if !resp.Success {
			return apperrors.NewDeploy("deploy of package '%s' failed: %s", name, resp.Message)
		}
	}
	return nil
}

func printTranscript(packageName string, resp *rpc.DeployResponse) {
	infoColor.Printf("package %s: deploy %s\n", packageName, resp.DeployID)
	for _, l := range resp.Logs {
		switch l.Level {
		case "error":
			errorColor.Println(l.Message)
		case "warn":
			warnColor.Println(l.Message)
		default:
			infoColor.Println(l.Message)
		}
	}
}
