// Package rpc defines the wire messages and service descriptor for the
// Deploy RPC, plus a JSON codec so the service runs over genuine
// google.golang.org/grpc transport without a protoc-generated stub.
package rpc

// DeployRequest is sent by the client for each package it pushes.
type DeployRequest struct {
	PackageName string            `json:"package_name"`
	FileData    []byte            `json:"file_data"`
	FileHash    string            `json:"file_hash"`
	Signature   string            `json:"signature"`
	PublicKey   string            `json:"public_key"`
	Metadata    map[string]string `json:"metadata"`
	Version     int32             `json:"version"`
}

// LogEntry is one transcript line returned to the client.
type LogEntry struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// DeployResponse carries the in-band result of one deploy. Deploy-engine
// failures are reported here with Success=false rather than as a gRPC
// transport error; requests rejected before the engine runs
// (InvalidArgument/Unauthenticated/ResourceExhausted/NotFound) get a
// gRPC status error and no DeployResponse.
type DeployResponse struct {
	Success  bool       `json:"success"`
	Message  string     `json:"message"`
	DeployID string     `json:"deploy_id"`
	Logs     []LogEntry `json:"logs"`
}
