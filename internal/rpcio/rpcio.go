// Package rpcio implements the RPC transport of spec.md §6: one
// verb call per line of newline-delimited JSON on stdin, one response
// per line on stdout, with the { "error": { "code", "message",
// "details" } } envelope of spec.md §6/§7 on failure.
//
// Grounded on original_source/src/mcp/server.rs's tool-router
// dispatch (one named handler per verb, uniform argument/result
// marshaling) generalized from an MCP tool router to a plain
// line-oriented JSON protocol, since this repository carries no MCP
// SDK dependency of its own.
package rpcio

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nutrilog/core/internal/ops"
	"github.com/nutrilog/core/internal/store"
	"github.com/nutrilog/core/internal/units"
)

// Request is one line of the stdin protocol.
type Request struct {
	ID   json.RawMessage `json:"id,omitempty"`
	Verb string          `json:"verb"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Response is one line of the stdout protocol. At most one of Result
// or Error is set; a successful verb with no result (the delete verbs)
// sets neither.
type Response struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Result any             `json:"result,omitempty"`
	Error  *ErrorEnvelope  `json:"error,omitempty"`
}

// ErrorEnvelope is the error shape of spec.md §6.
type ErrorEnvelope struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// handlerFunc decodes raw args, calls a Surface verb, and returns its
// result ready for marshaling.
type handlerFunc func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error)

// Server dispatches verb calls against an ops.Surface.
type Server struct {
	surface *ops.Surface
	log     *slog.Logger
	verbs   map[string]handlerFunc
}

// New builds a Server exposing every verb of spec.md §4.5 registered
// in verbTable (verbs.go).
func New(s *ops.Surface, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{surface: s, log: log, verbs: verbTable}
}

// Serve reads one Request per line from r and writes one Response per
// line to w until r is exhausted or ctx is canceled. It never returns
// a transport-level error for a single bad request — that becomes an
// error Response — only for I/O failure on r/w themselves.
func (srv *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := srv.handleLine(ctx, line)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}
	return scanner.Err()
}

func (srv *Server) handleLine(ctx context.Context, line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Response{Error: &ErrorEnvelope{Code: "Validation", Message: "malformed request: " + err.Error()}}
	}

	handler, ok := srv.verbs[req.Verb]
	if !ok {
		return Response{ID: req.ID, Error: &ErrorEnvelope{Code: "Validation", Message: fmt.Sprintf("unknown verb %q", req.Verb)}}
	}

	result, err := handler(ctx, srv.surface, req.Args)
	if err != nil {
		srv.log.WarnContext(ctx, "verb failed", "verb", req.Verb, "error", err)
		return Response{ID: req.ID, Error: toEnvelope(err)}
	}
	return Response{ID: req.ID, Result: result}
}

// toEnvelope classifies err into the kinds of spec.md §7. Wrapped
// errors (ops.wrapf prefixes every collaborator error with "verb: ")
// are unwrapped by errors.As, so the original typed error still
// selects the code.
func toEnvelope(err error) *ErrorEnvelope {
	var notFound *store.NotFoundError
	var validation *store.ValidationError
	var blocked *store.ModificationBlockedError
	var incompatible *units.Incompatible
	var circular *store.CircularReferenceError
	var storeErr *store.StoreError
	var invariant *store.InvariantViolationError

	switch {
	case errors.As(err, &notFound):
		return &ErrorEnvelope{Code: "NotFound", Message: err.Error(), Details: map[string]any{
			"entity": notFound.Entity, "id": notFound.ID,
		}}
	case errors.As(err, &validation):
		return &ErrorEnvelope{Code: "Validation", Message: err.Error(), Details: map[string]any{
			"field": validation.Field, "reason": validation.Reason,
		}}
	case errors.As(err, &blocked):
		return &ErrorEnvelope{Code: "ModificationBlocked", Message: err.Error(), Details: map[string]any{
			"entity": blocked.Entity, "reason": blocked.Reason, "blockers": blocked.Blockers,
		}}
	case errors.As(err, &incompatible):
		return &ErrorEnvelope{Code: "UnitIncompatible", Message: err.Error(), Details: map[string]any{
			"given_unit": incompatible.GivenUnit, "food_base": string(incompatible.FoodBase),
		}}
	case errors.As(err, &circular):
		return &ErrorEnvelope{Code: "CircularReference", Message: err.Error(), Details: map[string]any{
			"path": circular.Path,
		}}
	case errors.As(err, &storeErr):
		return &ErrorEnvelope{Code: "StoreError", Message: err.Error(), Details: map[string]any{
			"detail": storeErr.Detail,
		}}
	case errors.As(err, &invariant):
		return &ErrorEnvelope{Code: "InvariantViolation", Message: err.Error(), Details: map[string]any{
			"detail": invariant.Detail,
		}}
	default:
		return &ErrorEnvelope{Code: "StoreError", Message: err.Error()}
	}
}
