package rpc

import (
	"context"
	"encoding/json"
)

// Request is a JSON-RPC request in the service's format:
// {"method": "method_name", "params": [{...}]}
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// RpcError is the error payload returned inside a result object.
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Message     string `json:"error_message"`
}

// Error codes.
const (
	CodeUnknownMethod = 30
	CodeInvalidParams = 31
	CodeNotApplied    = 32
	CodeNotFound      = 33
	CodeInternal      = 73
)

// NewRpcError builds an error payload.
func NewRpcError(code int, errorString, message string) *RpcError {
	return &RpcError{Code: code, ErrorString: errorString, Message: message}
}

// ErrUnknownMethod is the response for an unregistered method name.
func ErrUnknownMethod(method string) *RpcError {
	return NewRpcError(CodeUnknownMethod, "unknownCmd", "Unknown method: "+method)
}

// ErrInvalidParams flags a malformed or missing parameter.
func ErrInvalidParams(message string) *RpcError {
	return NewRpcError(CodeInvalidParams, "invalidParams", message)
}

// ErrInternal flags a server-side failure.
func ErrInternal(message string) *RpcError {
	return NewRpcError(CodeInternal, "internal", message)
}

// RpcContext carries request-scoped information into method handlers.
type RpcContext struct {
	Context  context.Context
	ClientIP string
}

// MethodHandler is implemented by every RPC method.
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)
}

// MethodRegistry maps method names to handlers.
type MethodRegistry struct {
	methods map[string]MethodHandler
}

// NewMethodRegistry creates an empty registry.
func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{methods: make(map[string]MethodHandler)}
}

// Register adds a handler under a method name.
func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.methods[name] = handler
}

// Get looks up a handler.
func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	handler, exists := r.methods[name]
	return handler, exists
}

// List returns the registered method names.
func (r *MethodRegistry) List() []string {
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	return methods
}
