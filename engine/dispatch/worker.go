package dispatch

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/npillmayer/mtext/core"
	"github.com/npillmayer/mtext/engine/pipeline"
	"github.com/npillmayer/mtext/engine/transfer"
)

// Worker executes requests in an execution context of its own. Requests
// are handled concurrently; every request is answered by exactly one
// response, as long as the worker is not terminated.
type Worker struct {
	pipeline  *pipeline.Pipeline
	requests  chan Request
	responses chan Response
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	once      sync.Once
}

// StartWorker starts a worker operating on pipeline p.
func StartWorker(p *pipeline.Pipeline) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		pipeline:  p,
		requests:  make(chan Request, 16),
		responses: make(chan Response, 16),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go w.loop()
	tracer().Infof("worker started")
	return w
}

func (w *Worker) loop() {
	for {
		select {
		case <-w.done:
			return
		case req := <-w.requests:
			go w.respond(req)
		}
	}
}

func (w *Worker) respond(req Request) {
	resp := w.handle(req)
	select {
	case w.responses <- resp:
	case <-w.done:
		tracer().Infof("worker terminated, dropping response to %s", req.ID)
	}
}

// Post sends a request to the worker. It fails with code EDESTROYED if the
// worker has been terminated.
func (w *Worker) Post(req Request) error {
	select {
	case <-w.done:
		return core.Error(core.EDESTROYED, "worker terminated")
	default:
	}
	select {
	case w.requests <- req:
		return nil
	case <-w.done:
		return core.Error(core.EDESTROYED, "worker terminated")
	}
}

// Responses delivers the worker's responses, in order of completion.
func (w *Worker) Responses() <-chan Response {
	return w.responses
}

// Done is closed when the worker is terminated.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Terminate stops the worker. Requests still in progress are abandoned.
func (w *Worker) Terminate() {
	w.once.Do(func() {
		close(w.done)
		w.cancel()
		tracer().Infof("worker terminated")
	})
}

// handle executes a request. Panics are turned into error responses.
func (w *Worker) handle(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			tracer().Errorf("worker panicked handling %s request %s: %v", req.Type, req.ID, r)
			resp = fail(req, core.Error(core.EINTERNAL, "worker failed: %v", r))
		}
	}()
	tracer().Debugf("worker handles %s request %s", req.Type, req.ID)
	switch req.Type {
	case OpRender:
		var data RenderData
		if err := unmarshal(req.Data, &data); err != nil {
			return fail(req, err)
		}
		res := w.pipeline.Render(data.Document, data.Style, data.Colors)
		msg, err := transfer.Encode(res)
		if err != nil {
			return fail(req, err)
		}
		resp = succeed(req, msg.Header)
		resp.Payload = msg.Payload
		return resp
	case OpLoadFonts:
		var data LoadFontsData
		if err := unmarshal(req.Data, &data); err != nil {
			return fail(req, err)
		}
		return succeed(req, LoadFontsResult{Loaded: w.pipeline.LoadFonts(w.ctx, data.Fonts)})
	case OpListFonts, OpGetAvailableFonts:
		fonts, err := w.pipeline.ListFonts(w.ctx)
		if err != nil {
			return fail(req, err)
		}
		return succeed(req, ListFontsResult{Fonts: fonts})
	}
	tracer().Errorf("worker received request %s of unknown type %q", req.ID, req.Type)
	return fail(req, core.Error(core.EUNKNOWNOP, "unknown message type: %s", req.Type))
}

// decodeRender re-creates the geometry of a render response.
func decodeRender(resp *Response) (*transfer.Message, error) {
	msg := &transfer.Message{Payload: resp.Payload}
	if err := json.Unmarshal(resp.Data, &msg.Header); err != nil {
		return nil, core.WrapError(err, core.ECODEC, "malformed render response %s", resp.ID)
	}
	return msg, nil
}
