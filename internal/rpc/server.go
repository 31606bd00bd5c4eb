// Package rpc serves the auction service's JSON-RPC HTTP API and its
// WebSocket event feed.
package rpc

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clearbid/auctiond/internal/logging"
)

// Server handles HTTP JSON-RPC requests.
type Server struct {
	registry *MethodRegistry
	timeout  time.Duration
	log      logging.Logger
}

// NewServer creates an RPC server with every auction method registered.
func NewServer(deps Deps, timeout time.Duration, log logging.Logger) *Server {
	if log == nil {
		log = logging.Disabled
	}
	s := &Server{
		registry: NewMethodRegistry(),
		timeout:  timeout,
		log:      log,
	}
	s.registerAllMethods(deps)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleGetRequest(w, r)
	case http.MethodPost:
		s.handlePostRequest(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetRequest serves simple queries as GET with a command parameter.
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "ping"
	}

	ctx := &RpcContext{Context: r.Context(), ClientIP: clientIP(r)}
	result, rpcErr := s.executeMethod(method, nil, ctx)
	s.writeResponse(w, result, rpcErr)
}

func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeResponse(w, nil, ErrInternal("failed to read request body"))
		return
	}
	defer r.Body.Close()

	var request Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, nil, ErrInvalidParams("invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, nil, ErrInvalidParams("missing method field"))
		return
	}

	// Params is an array with a single object.
	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	ctx := &RpcContext{Context: r.Context(), ClientIP: clientIP(r)}
	result, rpcErr := s.executeMethod(request.Method, params, ctx)
	s.writeResponse(w, result, rpcErr)
}

func (s *Server) executeMethod(method string, params json.RawMessage, ctx *RpcContext) (interface{}, *RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, ErrUnknownMethod(method)
	}
	s.log.Tracef("rpc %s from %s", method, ctx.ClientIP)
	return handler.Handle(ctx, params)
}

// writeResponse writes the envelope: result.status is "success" or "error",
// with the error fields inside the result object.
func (s *Server) writeResponse(w http.ResponseWriter, result interface{}, rpcErr *RpcError) {
	response := make(map[string]interface{})
	if rpcErr != nil {
		response["result"] = map[string]interface{}{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
	} else {
		if resultMap, ok := result.(map[string]interface{}); ok {
			resultMap["status"] = "success"
			response["result"] = resultMap
		} else {
			response["result"] = map[string]interface{}{
				"status": "success",
				"data":   result,
			}
		}
	}

	data, err := json.Marshal(response)
	if err != nil {
		s.log.Errorf("marshal rpc response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// clientIP extracts the originating address, honoring forwarding headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
