// Package hooks implements the one-shot hook-process boundary of
// spec.md §4.12: read one JSON event from stdin, do work against the
// store and memory engine, write one JSON response to stdout, and exit
// 0 (proceed), 1 (non-blocking error), or 2 (blocking error). Grounded
// on BeadsLog's internal/hooks.Runner (internal/hooks/hooks.go) for the
// "hook is an external, fire-and-forget boundary" shape, adapted here
// from "run an executable script" to "decode one JSON event and route
// it to an in-process handler", since this hook surface talks to an
// AI assistant's tool-call lifecycle rather than to repo lifecycle
// events.
package hooks

import (
	"encoding/json"
	"fmt"
	"io"
)

// ExitCode is the dispatcher's outcome, per spec.md §4.12.
type ExitCode int

const (
	ExitProceed        ExitCode = 0
	ExitNonBlockingErr  ExitCode = 1
	ExitBlockingErr     ExitCode = 2
)

// Event is one hook invocation's input, decoded from stdin. Fields are
// a superset across event kinds; handlers read only what they need.
type Event struct {
	HookEventName  string          `json:"hook_event_name"`
	SessionID      string          `json:"session_id"`
	CWD            string          `json:"cwd"`
	ToolName       string          `json:"tool_name,omitempty"`
	ToolInput      json.RawMessage `json:"tool_input,omitempty"`
	ToolResponse   json.RawMessage `json:"tool_response,omitempty"`
	Prompt         string          `json:"prompt,omitempty"`
}

// Response is the dispatcher's stdout payload.
type Response struct {
	Continue          bool   `json:"continue"`
	StopReason        string `json:"stopReason,omitempty"`
	AdditionalContext string `json:"additionalContext,omitempty"`
	SystemMessage     string `json:"systemMessage,omitempty"`
}

// Handler performs one event's work and decides the outcome.
type Handler func(Event) (*Response, ExitCode, error)

// Dispatcher routes decoded events to a registered Handler by
// hook_event_name.
type Dispatcher struct {
	handlers map[string]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: map[string]Handler{}}
}

func (d *Dispatcher) Register(eventName string, h Handler) {
	d.handlers[eventName] = h
}

// Run reads one event from r, dispatches it, and writes the JSON
// response to w. It never panics on a malformed handler result; an
// event name with no registered handler is treated as a no-op
// proceed rather than an error, since new event kinds should not break
// hooks registered against an older dispatcher.
func (d *Dispatcher) Run(r io.Reader, w io.Writer) ExitCode {
	var event Event
	dec := json.NewDecoder(r)
	if err := dec.Decode(&event); err != nil {
		fmt.Fprintf(w, `{"continue":true,"systemMessage":"hook: malformed input: %s"}`, jsonEscape(err.Error()))
		return ExitNonBlockingErr
	}

	handler, ok := d.handlers[event.HookEventName]
	if !ok {
		writeResponse(w, &Response{Continue: true})
		return ExitProceed
	}

	resp, code, err := handler(event)
	if err != nil {
		if resp == nil {
			resp = &Response{Continue: code != ExitBlockingErr}
		}
		resp.SystemMessage = err.Error()
		writeResponse(w, resp)
		return code
	}
	if resp == nil {
		resp = &Response{Continue: true}
	}
	writeResponse(w, resp)
	return code
}

func writeResponse(w io.Writer, resp *Response) {
	enc := json.NewEncoder(w)
	_ = enc.Encode(resp)
}

func jsonEscape(s string) string {
	b, _ := json.Marshal(s)
	// Marshal wraps in quotes; strip them since the caller supplies its own.
	if len(b) >= 2 {
		return string(b[1 : len(b)-1])
	}
	return s
}
