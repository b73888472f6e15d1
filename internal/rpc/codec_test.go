package rpc

import (
	"reflect"
	"testing"

	"google.golang.org/grpc/encoding"
)

func TestCodecRegisteredUnderProtoName(t *testing.T) {
	c := encoding.GetCodec(codecName)
	if c == nil {
		t.Fatalf("expected a codec registered under %q", codecName)
	}
	if _, ok := c.(jsonCodec); !ok {
		t.Fatalf("expected registered codec to be jsonCodec, got %T", c)
	}
}

func TestCodecRoundTripsDeployRequest(t *testing.T) {
	var c jsonCodec
	req := &DeployRequest{
		PackageName: "app",
		FileData:    []byte{1, 2, 3},
		FileHash:    "abc123",
		Signature:   "sig",
		PublicKey:   "pub",
		Metadata:    map[string]string{"k": "v"},
		Version:     1,
	}

	data, err := c.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got := new(DeployRequest)
	if err := c.Unmarshal(data, got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(req, got) {
		t.Fatalf("round trip mismatch: want %+v, got %+v", req, got)
	}
}
