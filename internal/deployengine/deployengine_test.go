package deployengine

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LinusChen-yf/adeploy/internal/archiver"
	"github.com/LinusChen-yf/adeploy/internal/hookrunner"
)

func buildArchive(t *testing.T) ([]byte, string) {
	t.Helper()
	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "app.txt"), []byte("payload"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	data, _, err := archiver.Package("app", []string{srcDir})
	if err != nil {
		t.Fatalf("setup package: %v", err)
	}
	sum := sha256.Sum256(data)
	return data, hex.EncodeToString(sum[:])
}

func TestRunHashMismatchAbortsBeforeFilesystem(t *testing.T) {
	data, _ := buildArchive(t)
	deployDir := filepath.Join(t.TempDir(), "deploy")

	res := Run(Request{
		PackageName: "app",
		Archive:     data,
		ClaimedHash: "not-the-real-hash",
		Package:     Package{DeployDir: deployDir},
	}, time.Now())

	if res.Success {
		t.Fatalf("expected failure on hash mismatch")
	}
	if _, err := os.Stat(deployDir); !os.IsNotExist(err) {
		t.Fatalf("expected no filesystem side effect on hash mismatch")
	}
	if res.BackedUp {
		t.Fatalf("expected BackedUp=false on hash mismatch")
	}

	found := false
	for _, l := range res.Logs {
		if strings.Contains(l.Message, "Hash verification failed") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected transcript to contain 'Hash verification failed', got %+v", res.Logs)
	}
}

func TestRunSuccessExtractsAndReturnsDeployID(t *testing.T) {
	data, hash := buildArchive(t)
	deployDir := filepath.Join(t.TempDir(), "deploy")

	res := Run(Request{
		PackageName: "app",
		Archive:     data,
		ClaimedHash: hash,
		Package:     Package{DeployDir: deployDir},
	}, time.Now())

	if !res.Success {
		t.Fatalf("expected success, got err=%v logs=%+v", res.Err, res.Logs)
	}
	if res.DeployID == "" {
		t.Fatalf("expected non-empty deploy id")
	}
	if _, err := os.Stat(filepath.Join(deployDir, "app.txt")); err != nil {
		t.Fatalf("expected extracted file: %v", err)
	}
}

func TestRunPreHookFailureAbortsBeforeExtraction(t *testing.T) {
	data, hash := buildArchive(t)
	deployDir := filepath.Join(t.TempDir(), "deploy")

	res := Run(Request{
		PackageName: "app",
		Archive:     data,
		ClaimedHash: hash,
		Package:     Package{DeployDir: deployDir, PreHook: "exit 1", BackupEnabled: true},
	}, time.Now())

	if res.Success {
		t.Fatalf("expected failure on pre-hook error")
	}
	if _, err := os.Stat(deployDir); !os.IsNotExist(err) {
		t.Fatalf("expected no extraction after pre-hook failure")
	}
	if res.BackedUp {
		t.Fatalf("expected BackedUp=false when the pre-hook aborts before the backup stage runs")
	}
}

func TestRunPostHookFailureIsLogOnly(t *testing.T) {
	data, hash := buildArchive(t)
	deployDir := filepath.Join(t.TempDir(), "deploy")

	res := Run(Request{
		PackageName: "app",
		Archive:     data,
		ClaimedHash: hash,
		Package:     Package{DeployDir: deployDir, PostHook: "exit 1"},
	}, time.Now())

	if !res.Success {
		t.Fatalf("expected success despite post-hook failure, got err=%v", res.Err)
	}
	if _, err := os.Stat(filepath.Join(deployDir, "app.txt")); err != nil {
		t.Fatalf("expected extraction to have happened: %v", err)
	}

	found := false
	for _, l := range res.Logs {
		if l.Level == hookrunner.LevelError {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an error log line for the failed post-hook, got %+v", res.Logs)
	}
}

func TestRunBacksUpBeforeExtraction(t *testing.T) {
	root := t.TempDir()
	deployDir := filepath.Join(root, "deploy")
	backupRoot := filepath.Join(root, "backups")

	if err := os.MkdirAll(deployDir, 0755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(deployDir, "old.txt"), []byte("previous"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	data, hash := buildArchive(t)
	start := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	res := Run(Request{
		PackageName: "app",
		Archive:     data,
		ClaimedHash: hash,
		Package:     Package{DeployDir: deployDir, BackupEnabled: true, BackupRoot: backupRoot},
	}, start)

	if !res.Success {
		t.Fatalf("expected success, got err=%v", res.Err)
	}
	if !res.BackedUp {
		t.Fatalf("expected BackedUp=true when the backup stage actually writes a snapshot")
	}

	snapshot := filepath.Join(backupRoot, "backup_20260304_050607", "old.txt")
	got, err := os.ReadFile(snapshot)
	if err != nil || string(got) != "previous" {
		t.Fatalf("expected pre-deploy snapshot at %s, got %q err=%v", snapshot, got, err)
	}
}

func TestRunSkippedBackupLeavesBackedUpFalse(t *testing.T) {
	root := t.TempDir()
	deployDir := filepath.Join(root, "deploy")
	backupRoot := filepath.Join(root, "backups")

	data, hash := buildArchive(t)

	res := Run(Request{
		PackageName: "app",
		Archive:     data,
		ClaimedHash: hash,
		Package:     Package{DeployDir: deployDir, BackupEnabled: true, BackupRoot: backupRoot},
	}, time.Now())

	if !res.Success {
		t.Fatalf("expected success, got err=%v", res.Err)
	}
	if res.BackedUp {
		t.Fatalf("expected BackedUp=false when the deploy directory doesn't exist yet and the backup is skipped")
	}
}

func TestRunDeployIDAppearsInTranscriptOnFailure(t *testing.T) {
	data, _ := buildArchive(t)
	res := Run(Request{
		PackageName: "app",
		Archive:     data,
		ClaimedHash: "bogus",
		Package:     Package{DeployDir: t.TempDir()},
	}, time.Now())

	found := false
	for _, l := range res.Logs {
		if strings.Contains(l.Message, res.DeployID) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected deploy id %q to appear in transcript %+v", res.DeployID, res.Logs)
	}
}
