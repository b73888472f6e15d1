// Package deployengine runs the server-side state machine for one
// deploy: hash check, pre-hook, backup, extract, post-hook (spec §4.5,
// component C5).
package deployengine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LinusChen-yf/adeploy/internal/apperrors"
	"github.com/LinusChen-yf/adeploy/internal/archiver"
	"github.com/LinusChen-yf/adeploy/internal/backup"
	"github.com/LinusChen-yf/adeploy/internal/hookrunner"
)

// LogEntry is one line of the deploy transcript, ordered strictly by
// the state-machine stage that produced it.
type LogEntry struct {
	Level   hookrunner.Level
	Message string
}

// Package describes the server-side configuration for the package
// being deployed, mirroring ServerPackage from the data model.
type Package struct {
	DeployDir     string
	PreHook       string
	PostHook      string
	BackupEnabled bool
	BackupRoot    string
}

// Request is the input to Run: the archive bytes plus the hash the
// client claims for them.
type Request struct {
	PackageName string
	Archive     []byte
	ClaimedHash string
	Package     Package
}

// Result is the outcome of one deploy: a transcript plus success flag.
// A non-nil Err means the deploy failed; the transcript still carries
// every log line emitted before the abort.
type Result struct {
	DeployID string
	Success  bool
	Logs     []LogEntry
	Err      error
	// BackedUp is true only if the backup stage actually wrote a
	// snapshot (deploy directory existed and the copy succeeded), not
	// merely because backup_enabled was set.
	BackedUp bool
}

// Run executes the six-stage deploy pipeline described in spec §4.5.
// now is accepted explicitly (rather than calling time.Now internally)
// so the backup snapshot name is deterministic under test.
func Run(req Request, now time.Time) Result {
	deployID := uuid.NewString()
	var logs []LogEntry
	var backedUp bool

	info := func(format string, args ...any) {
		logs = append(logs, LogEntry{Level: hookrunner.LevelInfo, Message: fmt.Sprintf(format, args...)})
	}
	errLog := func(format string, args ...any) {
		logs = append(logs, LogEntry{Level: hookrunner.LevelError, Message: fmt.Sprintf(format, args...)})
	}
	fail := func(err error) Result {
		errLog("deploy %s failed: %v", deployID, err)
		return Result{DeployID: deployID, Success: false, Logs: logs, Err: err, BackedUp: backedUp}
	}
	appendHookLogs := func(hookLogs []hookrunner.LogEntry) {
		for _, l := range hookLogs {
			logs = append(logs, LogEntry{Level: l.Level, Message: l.Message})
		}
	}

	info("deploy %s received for package '%s'", deployID, req.PackageName)

	// Received -> HashVerified
	sum := sha256.Sum256(req.Archive)
	actualHash := hex.EncodeToString(sum[:])
	if actualHash != req.ClaimedHash {
		return fail(apperrors.NewDeploy("Hash verification failed: claimed %s, computed %s", req.ClaimedHash, actualHash))
	}
	info("hash verified")

	// HashVerified -> PreHookRan
	preLogs, preErr := hookrunner.Run("pre-deploy", req.Package.PreHook)
	appendHookLogs(preLogs)
	if preErr != nil {
		return fail(preErr)
	}

	// PreHookRan -> Backed-up
	if req.Package.BackupEnabled {
		backupRoot := req.Package.BackupRoot
		if backupRoot == "" {
			var err error
			backupRoot, err = backup.DefaultRoot(req.PackageName)
			if err != nil {
				return fail(err)
			}
		}
		path, skipped, err := backup.Snapshot(req.Package.DeployDir, backupRoot, now)
		if err != nil {
			return fail(err)
		}
		if skipped {
			info("deploy directory '%s' does not exist yet, skipping backup", req.Package.DeployDir)
		} else {
			backedUp = true
			info("backed up deploy directory to '%s'", path)
		}
	}

	// Backed-up -> Extracted
	if err := archiver.Extract(req.Archive, req.Package.DeployDir); err != nil {
		return fail(err)
	}
	info("extracted archive to '%s'", req.Package.DeployDir)

	// Extracted -> PostHookRan (failure here is log-only, per spec §4.5)
	postLogs, postErr := hookrunner.Run("post-deploy", req.Package.PostHook)
	appendHookLogs(postLogs)
	if postErr != nil {
		errLog("post-deploy hook failed (deploy already live): %v", postErr)
	}

	info("deploy %s completed", deployID)
	return Result{DeployID: deployID, Success: true, Logs: logs, BackedUp: backedUp}
}
