/*
Package dispatch executes rendering requests either inline or delegated to
a worker.

A Coordinator offers the operations render, loadFonts and listFonts. In
inline mode it runs them on its own pipeline within the caller's
goroutine. In delegated mode every call is framed as a Request, tagged
with a fresh correlation id and posted to a Worker. The worker handles
requests concurrently and answers each one with exactly one Response
carrying the same id. Responses may arrive in any order; the coordinator
matches them to waiting callers by id.

Coordinator and worker each own a pipeline, and with it a font store of
their own. Fonts have to be loaded in every mode a coordinator is used in.

Switching modes while calls are in flight leaves these calls in an
undefined state. Callers have to wait for pending calls to complete
before switching.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package dispatch

import (
	"encoding/json"

	"github.com/npillmayer/mtext/core"
	"github.com/npillmayer/mtext/core/color"
	"github.com/npillmayer/mtext/core/font/fontregistry"
	"github.com/npillmayer/mtext/engine/mtext"
	"github.com/npillmayer/mtext/engine/style"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mtext.dispatch'.
func tracer() tracing.Trace {
	return tracing.Select("mtext.dispatch")
}

// Op is the type of a request.
type Op string

// Operations of the wire protocol. OpGetAvailableFonts is an alias for
// OpListFonts. OpError tags responses to requests of unknown type.
const (
	OpRender            Op = "render"
	OpLoadFonts         Op = "loadFonts"
	OpListFonts         Op = "listFonts"
	OpGetAvailableFonts Op = "getAvailableFonts"
	OpError             Op = "error"
)

// Request is a message sent to a worker.
type Request struct {
	Type Op              `json:"type"`
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Response is a message sent back from a worker. Payload carries the
// binary buffers of a render result outside of the JSON data.
type Response struct {
	Type    Op              `json:"type"`
	ID      string          `json:"id"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Payload [][]byte        `json:"-"`
}

// RenderData is the data of a render request. The data of the response
// is a transfer header, its payload the geometry buffers.
type RenderData struct {
	Document *mtext.Document  `json:"mtextContent"`
	Style    *style.TextStyle `json:"textStyle,omitempty"`
	Colors   color.Context    `json:"colorSettings"`
}

// LoadFontsData is the data of a loadFonts request.
type LoadFontsData struct {
	Fonts []string `json:"fonts"`
}

// LoadFontsResult is the data of a loadFonts response.
type LoadFontsResult struct {
	Loaded []string `json:"loaded"`
}

// ListFontsResult is the data of a listFonts response.
type ListFontsResult struct {
	Fonts []fontregistry.Descriptor `json:"fonts"`
}

// NewRequest creates a request, marshaling data to JSON.
func NewRequest(op Op, id string, data interface{}) (Request, error) {
	req := Request{Type: op, ID: id}
	if data == nil {
		return req, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return req, core.WrapError(err, core.EINVALID, "cannot marshal %s request", op)
	}
	req.Data = raw
	return req, nil
}

// succeed creates a successful response to req.
func succeed(req Request, data interface{}) Response {
	raw, err := json.Marshal(data)
	if err != nil {
		return fail(req, core.WrapError(err, core.EINTERNAL, "cannot marshal %s response", req.Type))
	}
	return Response{Type: req.Type, ID: req.ID, Success: true, Data: raw}
}

// fail creates an error response to req.
func fail(req Request, err error) Response {
	typ := req.Type
	if core.Is(err, core.EUNKNOWNOP) {
		typ = OpError
	}
	return Response{Type: typ, ID: req.ID, Error: err.Error()}
}

// Err returns the error carried by an unsuccessful response.
func (resp *Response) Err() error {
	if resp.Success {
		return nil
	}
	code := core.EINTERNAL
	if resp.Type == OpError {
		code = core.EUNKNOWNOP
	}
	return core.Error(code, "%s request %s failed: %s", resp.Type, resp.ID, resp.Error)
}

func unmarshal(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return core.Error(core.EINVALID, "request carries no data")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return core.WrapError(err, core.EINVALID, "malformed request data")
	}
	return nil
}
