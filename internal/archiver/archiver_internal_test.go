package archiver

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
)

// buildMaliciousArchive hand-crafts a gzip+tar stream with a single
// entry at the given (possibly traversal) name, bypassing Package's own
// sanitization so Extract's guard can be tested in isolation.
func buildMaliciousArchive(name string, content []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	hdr := &tar.Header{
		Name: name,
		Mode: 0644,
		Size: int64(len(content)),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, err
	}
	if _, err := tw.Write(content); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
