// Package archiver builds and extracts the gzip-compressed tar archives
// that are the unit of transmission for a deploy (spec §4.2, component
// C2). Packaging places file sources at their base filename and
// directory sources unprefixed at the archive root; extraction rejects
// any member whose destination would escape the target directory.
package archiver

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/LinusChen-yf/adeploy/internal/apperrors"
)

// Package builds a gzip-compressed tar from sources in order and returns
// the archive bytes along with the hex SHA-256 of the complete gzip
// stream.
func Package(name string, sources []string) ([]byte, string, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, src := range sources {
		info, err := os.Lstat(src)
		if err != nil {
			_ = tw.Close()
			_ = gz.Close()
			return nil, "", apperrors.NewFileSystem("Source path '%s' does not exist", src)
		}

		if info.IsDir() {
			if err := addDirUnprefixed(tw, src); err != nil {
				_ = tw.Close()
				_ = gz.Close()
				return nil, "", err
			}
			continue
		}

		if err := addFileAsBasename(tw, src, info); err != nil {
			_ = tw.Close()
			_ = gz.Close()
			return nil, "", err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, "", apperrors.WrapFileSystem(err, "failed to finalize tar stream for package '%s'", name)
	}
	if err := gz.Close(); err != nil {
		return nil, "", apperrors.WrapFileSystem(err, "failed to finalize gzip stream for package '%s'", name)
	}

	sum := sha256.Sum256(buf.Bytes())
	return buf.Bytes(), hex.EncodeToString(sum[:]), nil
}

func addFileAsBasename(tw *tar.Writer, src string, info os.FileInfo) error {
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return apperrors.WrapFileSystem(err, "failed to build tar header for '%s'", src)
	}
	hdr.Name = filepath.Base(src)

	if err := tw.WriteHeader(hdr); err != nil {
		return apperrors.WrapFileSystem(err, "failed to write tar header for '%s'", src)
	}

	f, err := os.Open(src)
	if err != nil {
		return apperrors.WrapFileSystem(err, "failed to open source file '%s'", src)
	}
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return apperrors.WrapFileSystem(err, "failed to copy source file '%s' into archive", src)
	}
	return nil
}

// addDirUnprefixed walks src and writes its entries rooted directly at
// the archive root (i.e. without a leading directory component).
func addDirUnprefixed(tw *tar.Writer, src string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return apperrors.WrapFileSystem(err, "failed to walk source directory '%s'", src)
		}

		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return apperrors.WrapFileSystem(relErr, "failed to compute relative path for '%s'", path)
		}
		if rel == "." {
			return nil // the directory itself is not a tar entry; only its contents are
		}

		hdr, hdrErr := tar.FileInfoHeader(info, "")
		if hdrErr != nil {
			return apperrors.WrapFileSystem(hdrErr, "failed to build tar header for '%s'", path)
		}
		hdr.Name = filepath.ToSlash(rel)

		if info.IsDir() {
			hdr.Name += "/"
			return tw.WriteHeader(hdr)
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return apperrors.WrapFileSystem(err, "failed to write tar header for '%s'", path)
		}

		f, openErr := os.Open(path)
		if openErr != nil {
			return apperrors.WrapFileSystem(openErr, "failed to open '%s'", path)
		}
		defer f.Close()

		if _, err := io.Copy(tw, f); err != nil {
			return apperrors.WrapFileSystem(err, "failed to copy '%s' into archive", path)
		}
		return nil
	})
}

// Extract decompresses and unpacks archive into targetDir, creating it
// if missing. Entries whose resolved destination would escape targetDir
// are rejected.
func Extract(archive []byte, targetDir string) error {
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return apperrors.WrapDeploy(err, "failed to create deploy directory '%s'", targetDir)
	}

	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return apperrors.WrapDeploy(err, "failed to open gzip stream")
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	cleanTarget := filepath.Clean(targetDir)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return apperrors.WrapDeploy(err, "failed to read tar stream")
		}

		dest := filepath.Join(cleanTarget, hdr.Name)
		if !withinTarget(cleanTarget, dest) {
			return apperrors.NewDeploy("archive entry '%s' would escape target directory", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, os.FileMode(hdr.Mode)); err != nil {
				return apperrors.WrapDeploy(err, "failed to create directory '%s'", dest)
			}
		case tar.TypeSymlink, tar.TypeLink:
			linkTarget := hdr.Linkname
			resolved := linkTarget
			if !filepath.IsAbs(resolved) {
				resolved = filepath.Join(filepath.Dir(dest), linkTarget)
			}
			if !withinTarget(cleanTarget, resolved) {
				return apperrors.NewDeploy("archive entry '%s' links outside target directory", hdr.Name)
			}
			if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
				return apperrors.WrapDeploy(err, "failed to create parent directory for '%s'", dest)
			}
			if err := os.Symlink(linkTarget, dest); err != nil {
				return apperrors.WrapDeploy(err, "failed to create symlink '%s'", dest)
			}
		default:
			if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
				return apperrors.WrapDeploy(err, "failed to create parent directory for '%s'", dest)
			}
			out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
			if err != nil {
				return apperrors.WrapDeploy(err, "failed to create file '%s'", dest)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return apperrors.WrapDeploy(err, "failed to write file '%s'", dest)
			}
			out.Close()
		}
	}
	return nil
}

func withinTarget(cleanTarget, dest string) bool {
	cleanDest := filepath.Clean(dest)
	if cleanDest == cleanTarget {
		return true
	}
	return strings.HasPrefix(cleanDest, cleanTarget+string(os.PathSeparator))
}
