// Package project implements the project router actor: it owns the client
// socket, parses inbound RPC requests, routes each to its owning component
// (Analyzer, Indexer, Debug controller) by request type, and serializes
// every reply and event back onto the wire.
package project

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/adamchandra/ensime/internal/analyzer"
	"github.com/adamchandra/ensime/internal/debug"
	"github.com/adamchandra/ensime/internal/index"
	"github.com/adamchandra/ensime/internal/protocol"
	"github.com/adamchandra/ensime/internal/registry"
	"github.com/adamchandra/ensime/internal/wire"
)

// handlerFunc handles one parsed request form and returns the value to
// place in the `:ok` reply payload.
type handlerFunc func(form wire.List) (interface{}, error)

// Router owns a single client connection's read loop and the shared write
// lock every reply, event, and error frame serializes through.
type Router struct {
	analyzer *analyzer.Analyzer
	indexer  *index.Indexer
	debugCtl *debug.Controller
	reg      *registry.DB

	writeMu sync.Mutex
	conn    net.Conn

	handlers map[string]handlerFunc
}

// New creates a Router wired to the three component actors and the
// breakpoint registry. reg may be nil, in which case breakpoint changes are
// not persisted across a restart.
func New(a *analyzer.Analyzer, idx *index.Indexer, dbg *debug.Controller, reg *registry.DB) *Router {
	r := &Router{analyzer: a, indexer: idx, debugCtl: dbg, reg: reg}
	r.handlers = r.buildHandlers()
	dbg.OnBreakpointResolved(func(basename string, line int) {
		if r.reg == nil {
			return
		}
		if err := r.reg.SetBreakpointActive(basename, line, true); err != nil {
			log.Printf("project: mark breakpoint %s:%d active: %v", basename, line, err)
		}
	})
	return r
}

// RestoreBreakpoints replays every persisted breakpoint into the debug
// controller, so they resolve (or wait pending) as soon as a target VM's
// classes load, without the client having to re-issue debug-set-break.
func (r *Router) RestoreBreakpoints() error {
	if r.reg == nil {
		return nil
	}
	bps, err := r.reg.ListBreakpoints()
	if err != nil {
		return err
	}
	for _, bp := range bps {
		if _, _, err := r.debugCtl.SetBreakpoint(bp.File, bp.Line); err != nil {
			return err
		}
	}
	return nil
}

// Serve reads and dispatches requests from conn until it errors or closes,
// and forwards every debug controller event onto the same connection as an
// AsyncEvent frame.
func (r *Router) Serve(conn net.Conn) error {
	connID := uuid.NewString()
	r.conn = conn
	r.debugCtl.Subscribe(func(evt debug.ControllerEvent) {
		r.sendEvent(protocol.ControllerEventToWire(evt))
	})

	log.Printf("project: connection %s opened", connID)
	br := bufio.NewReader(conn)
	for {
		v, err := wire.ReadFrame(br)
		if err != nil {
			log.Printf("project: connection %s closed: %v", connID, err)
			return err
		}
		r.handleFrame(v)
	}
}

func (r *Router) handleFrame(v interface{}) {
	req, err := wire.ParseRequest(v)
	if err != nil {
		r.sendProtocolError(wire.ErrMalformedRPC, err.Error())
		return
	}

	headSym, ok := req.Form.Get(0).(wire.Symbol)
	if !ok {
		r.sendProtocolError(wire.ErrUnrecognizedForm, "form head is not a symbol")
		return
	}
	head := string(headSym)

	component, ok := protocol.Route(head)
	if !ok {
		r.sendProtocolError(wire.ErrUnrecognizedForm, fmt.Sprintf("unrecognized form %q", head))
		return
	}
	handler, ok := r.handlers[head]
	if !ok {
		r.sendProtocolError(wire.ErrUnrecognizedRPC, fmt.Sprintf("no handler registered for %q", head))
		return
	}

	value, err := r.safeCall(handler, req.Form)
	if err != nil {
		r.sendRPCError(errorKind(component, err), err.Error(), req.CallID)
		return
	}
	r.sendRPCResult(value, req.CallID)
}

// errorKind maps a handler failure to its wire error code: the analyzer's
// readiness-gate error keeps its own distinguished code (209); everything
// else falls back to the owning component's generic exception kind.
func errorKind(component protocol.Component, err error) wire.ErrorKind {
	if errors.Is(err, analyzer.ErrNotReady) {
		return wire.ErrAnalyzerNotReady
	}
	return protocol.ExceptionKindFor(component)
}

// safeCall runs handler and recovers any panic into an error, so a bug in
// one request's handling never propagates past the actor boundary.
func (r *Router) safeCall(h handlerFunc, form wire.List) (value interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic handling %v: %v", form.Get(0), rec)
		}
	}()
	return h(form)
}

// sendRPCResult writes `(:return (:ok value) callId)`.
func (r *Router) sendRPCResult(value interface{}, callID int64) {
	r.write(wire.OKReply(value, callID))
}

// sendRPCError writes `(:return (:abort kind detail) callId)`.
func (r *Router) sendRPCError(kind wire.ErrorKind, detail string, callID int64) {
	r.write(wire.AbortReply(kind, detail, callID))
}

// sendProtocolError writes an unsolicited abort frame with call-id 0: a
// malformed or unrecognized inbound frame has no call-id to correlate to.
func (r *Router) sendProtocolError(kind wire.ErrorKind, detail string) {
	log.Printf("project: protocol error %d: %s", kind, detail)
	r.write(wire.AbortReply(kind, detail, 0))
}

// sendEvent writes an unsolicited event frame.
func (r *Router) sendEvent(evt wire.List) {
	r.write(evt)
}

func (r *Router) write(v wire.List) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if err := wire.WriteFrame(r.conn, v); err != nil {
		log.Printf("project: write frame: %v", err)
	}
}

// backgroundContext is the context background compiles run under; there is
// no client-driven cancellation for them.
func backgroundContext() context.Context {
	return context.Background()
}
