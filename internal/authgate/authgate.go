// Package authgate verifies an inbound DeployRequest's signature and
// allow-list membership before the request reaches the deploy engine
// (spec §4.6, component C6).
package authgate

import (
	"encoding/base64"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LinusChen-yf/adeploy/internal/rpc"
	"github.com/LinusChen-yf/adeploy/internal/signer"
)

// Check runs the allow-list membership test and signature verification
// for req against allowedKeys, a snapshot of ServerSettings.allowed_keys.
// It returns a gRPC status error of InvalidArgument (malformed signature)
// or Unauthenticated (disallowed key or bad signature) on failure.
func Check(req *rpc.DeployRequest, allowedKeys []string) error {
	sig, err := base64.StdEncoding.DecodeString(strings.TrimSpace(req.Signature))
	if err != nil {
		return status.Error(codes.InvalidArgument, "malformed signature encoding")
	}

	clientKey := strings.TrimSpace(req.PublicKey)
	allowed := false
	for _, k := range allowedKeys {
		if strings.TrimSpace(k) == clientKey {
			allowed = true
			break
		}
	}
	if !allowed {
		return status.Errorf(codes.Unauthenticated, "Client public key not allowed: %q", clientKey)
	}

	ok, err := signer.Verify(clientKey, req.FileData, sig)
	if err != nil || !ok {
		return status.Error(codes.Unauthenticated, "signature verification failed")
	}
	return nil
}
