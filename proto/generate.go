// Package llmv1 holds the gRPC contract for the model-serving sidecar.
// Generated code is produced by protoc and not committed.
package llmv1

//go:generate protoc --go_out=. --go_opt=paths=source_relative --go-grpc_out=. --go-grpc_opt=paths=source_relative llm.proto
