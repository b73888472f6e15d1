package rpc

import (
	"context"
	"testing"
)

type fakeDeployServer struct {
	lastReq *DeployRequest
}

func (f *fakeDeployServer) Deploy(ctx context.Context, req *DeployRequest) (*DeployResponse, error) {
	f.lastReq = req
	return &DeployResponse{Success: true, DeployID: "fixed-id"}, nil
}

func TestServiceDescExposesSingleDeployMethod(t *testing.T) {
	if ServiceDesc.ServiceName != ServiceName {
		t.Fatalf("expected service name %q, got %q", ServiceName, ServiceDesc.ServiceName)
	}
	if len(ServiceDesc.Methods) != 1 || ServiceDesc.Methods[0].MethodName != "Deploy" {
		t.Fatalf("expected a single 'Deploy' method, got %+v", ServiceDesc.Methods)
	}
	if len(ServiceDesc.Streams) != 0 {
		t.Fatalf("expected no streaming methods, got %+v", ServiceDesc.Streams)
	}
}

func TestDeployHandlerDecodesAndDispatches(t *testing.T) {
	srv := &fakeDeployServer{}
	decoded := &DeployRequest{PackageName: "app"}

	out, err := deployHandler(srv, context.Background(), func(v any) error {
		req := v.(*DeployRequest)
		*req = *decoded
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, ok := out.(*DeployResponse)
	if !ok || !resp.Success {
		t.Fatalf("expected successful DeployResponse, got %+v", out)
	}
	if srv.lastReq.PackageName != "app" {
		t.Fatalf("expected decoded request to reach server, got %+v", srv.lastReq)
	}
}
