// Package backup snapshots a deploy directory before extraction
// (spec §4.4, component C4).
package backup

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/LinusChen-yf/adeploy/internal/apperrors"
)

const timestampLayout = "20060102_150405"

// Snapshot copies deployDir's contents into
// <backupRoot>/backup_<UTC timestamp>, creating backupRoot if missing.
// If deployDir does not exist, this is a no-op that returns an empty
// snapshot path and no error (spec §4.4). The snapshot name is derived
// from the supplied start time, not time.Now, so the engine and its
// tests can make the directory name deterministic.
func Snapshot(deployDir, backupRoot string, startTime time.Time) (snapshotPath string, skipped bool, err error) {
	if _, statErr := os.Stat(deployDir); os.IsNotExist(statErr) {
		return "", true, nil
	} else if statErr != nil {
		return "", false, apperrors.WrapFileSystem(statErr, "failed to stat deploy directory '%s'", deployDir)
	}

	if err := os.MkdirAll(backupRoot, 0755); err != nil {
		return "", false, apperrors.WrapFileSystem(err, "failed to create backup root '%s'", backupRoot)
	}

	name := "backup_" + startTime.UTC().Format(timestampLayout)
	dest := filepath.Join(backupRoot, name)

	if err := copyTree(deployDir, dest); err != nil {
		return "", false, apperrors.WrapFileSystem(err, "failed to snapshot deploy directory '%s' to '%s'", deployDir, dest)
	}
	return dest, false, nil
}

// DefaultRoot returns the backup root sibling to the running executable
// named after the package, used when ServerPackage.BackupPath is unset.
func DefaultRoot(packageName string) (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", apperrors.WrapFileSystem(err, "failed to resolve executable path for default backup root")
	}
	return filepath.Join(filepath.Dir(exe), packageName+"_backups"), nil
}

func copyTree(src, dest string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}

		if info.Mode()&os.ModeSymlink != 0 {
			linkTarget, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(linkTarget, target)
		}

		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
