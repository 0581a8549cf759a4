// Copyright 2025 R5 Labs
// This file is part of the R5 Core library.
//
// This software is provided "as is", without warranty of any kind,
// express or implied, including but not limited to the warranties
// of merchantability, fitness for a particular purpose and
// noninfringement. In no event shall the authors or copyright
// holders be liable for any claim, damages, or other liability,
// whether in an action of contract, tort or otherwise, arising
// from, out of or in connection with the software or the use or
// other dealings in the software.

package rpc

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/r5-labs/r5-rpc-gateway/log"
	"github.com/r5-labs/r5-rpc-gateway/metrics"
	"github.com/rs/cors"
)

const maxHTTPBodyBytes = 32 * 1024 * 1024

type wireRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type wireResponse struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      any        `json:"id"`
	Result  any        `json:"result,omitempty"`
	Error   *JSONError `json:"error,omitempty"`
}

// Server exposes a Dispatcher over HTTP, composed with CORS and a Prometheus
// metrics endpoint the way the teacher composes its own JSON-RPC handler
// with sibling stdlib handlers.
type Server struct {
	dispatcher     *Dispatcher
	allowedOrigins []string
}

// NewServer builds an HTTP JSON-RPC server around dispatcher.
func NewServer(dispatcher *Dispatcher, allowedOrigins []string) *Server {
	return &Server{dispatcher: dispatcher, allowedOrigins: allowedOrigins}
}

// Handler returns the composed http.Handler: CORS-wrapped JSON-RPC on "/"
// and Prometheus exposition on "/metrics".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveJSONRPC)
	mux.Handle("/metrics", metrics.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

func (s *Server) serveJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxHTTPBodyBytes)
	defer body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		writeJSON(w, wireResponse{JSONRPC: "2.0", Error: newError(ParseErrorCode, "parse error")})
		return
	}

	ip := clientIP(r)
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var reqs []wireRequest
		if err := json.Unmarshal(raw, &reqs); err != nil {
			writeJSON(w, wireResponse{JSONRPC: "2.0", Error: newError(ParseErrorCode, "parse error")})
			return
		}
		out := make([]wireResponse, len(reqs))
		for i, req := range reqs {
			out[i] = s.handleOne(req, ip)
		}
		writeJSON(w, out)
		return
	}

	var req wireRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeJSON(w, wireResponse{JSONRPC: "2.0", Error: newError(ParseErrorCode, "parse error")})
		return
	}
	writeJSON(w, s.handleOne(req, ip))
}

func (s *Server) handleOne(req wireRequest, ip string) wireResponse {
	rd := NewRequestDetails(uuid.NewString(), ip)

	var params []any
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			e := s.dispatcher.decorate(InvalidParameter("params must be a JSON array"), rd)
			return wireResponse{JSONRPC: "2.0", ID: req.ID, Error: e}
		}
	}

	result, err := s.dispatcher.Dispatch(req.Method, params, rd)
	if err != nil {
		metrics.DispatchErrors.WithLabelValues(req.Method, errorClass(err.Code)).Inc()
		log.Debug("dispatch error", "method", req.Method, "reqid", rd.RequestID, "code", err.Code, "message", err.Message)
		return wireResponse{JSONRPC: "2.0", ID: req.ID, Error: err}
	}
	metrics.DispatchOK.WithLabelValues(req.Method).Inc()
	return wireResponse{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func errorClass(code int) string {
	switch code {
	case MethodNotFoundCode:
		return "not_found"
	case MethodUnsupportedCode:
		return "unsupported"
	case MethodNotYetImplementedCode:
		return "not_implemented"
	case InvalidParamsCode, MissingRequiredParamCode, InvalidParameterCode, UnknownParameterCode:
		return "validation"
	case RateLimitExceededCode:
		return "rate_limited"
	case UpstreamFailureCode:
		return "upstream"
	case RequestTimeoutCode:
		return "timeout"
	default:
		return "internal"
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
