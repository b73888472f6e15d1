// Package server implements the Deploy RPC request handler: transport
// termination, payload-size enforcement, package resolution, and
// dispatch to the deploy engine (spec §4.8, component C8).
package server

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LinusChen-yf/adeploy/internal/authgate"
	"github.com/LinusChen-yf/adeploy/internal/configstore"
	"github.com/LinusChen-yf/adeploy/internal/deployengine"
	"github.com/LinusChen-yf/adeploy/internal/logging"
	"github.com/LinusChen-yf/adeploy/internal/metrics"
	"github.com/LinusChen-yf/adeploy/internal/rpc"
)

// DeployService implements rpc.DeployServiceServer against a ConfigStore.
type DeployService struct {
	store *configstore.Store
	log   *logrus.Logger
}

// New builds a DeployService reading package/auth state from store.
func New(store *configstore.Store, log *logrus.Logger) *DeployService {
	return &DeployService{store: store, log: log}
}

// Deploy implements spec §4.8's eight-step handler.
func (s *DeployService) Deploy(ctx context.Context, req *rpc.DeployRequest) (*rpc.DeployResponse, error) {
	s.log.WithFields(logging.DeployFields("", req.PackageName)).Info("received deploy request")

	snap, pkg, found := s.store.Snapshot(req.PackageName)

	if err := authgate.Check(req, snap.AllowedKeys); err != nil {
		if status.Code(err) == codes.Unauthenticated {
			s.log.Warnf("rejected deploy request for package '%s' from public key %q: %v", req.PackageName, req.PublicKey, err)
		}
		return nil, err
	}

	if snap.MaxFileSize > 0 && int64(len(req.FileData)) > snap.MaxFileSize {
		return nil, status.Errorf(codes.ResourceExhausted, "archive size %d exceeds configured maximum %d", len(req.FileData), snap.MaxFileSize)
	}

	if !found {
		return nil, status.Errorf(codes.NotFound, "package '%s' not configured", req.PackageName)
	}

	start := time.Now()
	result := deployengine.Run(deployengine.Request{
		PackageName: req.PackageName,
		Archive:     req.FileData,
		ClaimedHash: req.FileHash,
		Package: deployengine.Package{
			DeployDir:     pkg.DeployPath,
			PreHook:       pkg.BeforeDeployScript,
			PostHook:      pkg.AfterDeployScript,
			BackupEnabled: pkg.BackupEnabled,
			BackupRoot:    pkg.BackupPath,
		},
	}, start)

	metrics.DeployDuration.WithLabelValues(req.PackageName).Observe(time.Since(start).Seconds())
	resultLabel := "success"
	if !result.Success {
		resultLabel = "failure"
	}
	metrics.DeploysTotal.WithLabelValues(req.PackageName, resultLabel).Inc()
	if result.BackedUp {
		metrics.BackupsTotal.Inc()
	}
	s.log.WithFields(logging.DeployFields(result.DeployID, req.PackageName)).Infof("deploy finished: success=%t", result.Success)

	return &rpc.DeployResponse{
		Success:  result.Success,
		Message:  responseMessage(result),
		DeployID: result.DeployID,
		Logs:     toWireLogs(result.Logs),
	}, nil
}

func responseMessage(result deployengine.Result) string {
	if result.Success {
		return "deploy completed successfully"
	}
	if result.Err != nil {
		return result.Err.Error()
	}
	return "deploy failed"
}

func toWireLogs(logs []deployengine.LogEntry) []rpc.LogEntry {
	out := make([]rpc.LogEntry, 0, len(logs))
	for _, l := range logs {
		out = append(out, rpc.LogEntry{Level: string(l.Level), Message: l.Message})
	}
	return out
}
