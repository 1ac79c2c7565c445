package dispatch

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/npillmayer/mtext/core"
	"github.com/npillmayer/mtext/core/color"
	"github.com/npillmayer/mtext/core/font/fontregistry"
	"github.com/npillmayer/mtext/core/locate/resources"
	"github.com/npillmayer/mtext/engine/geometry"
	"github.com/npillmayer/mtext/engine/mtext"
	"github.com/npillmayer/mtext/engine/pipeline"
	"github.com/npillmayer/mtext/engine/style"
	"github.com/npillmayer/mtext/engine/transfer"
)

// Mode is an execution strategy.
type Mode int

// Execution strategies.
const (
	Inline    Mode = iota // run in the caller's goroutine
	Delegated             // run in a worker
)

func (m Mode) String() string {
	if m == Delegated {
		return "delegated"
	}
	return "inline"
}

// Coordinator dispatches operations to an execution strategy. It is safe
// for concurrent use.
type Coordinator struct {
	mx        sync.Mutex
	mode      Mode
	conf      pipeline.Config
	local     *pipeline.Pipeline
	worker    *Worker
	pending   map[string]chan Response // in-flight delegated requests by id
	seq       uint64
	done      chan struct{}
	destroyed bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithFontSource sets the source fonts are loaded from.
func WithFontSource(src resources.FontSource) Option {
	return func(c *Coordinator) {
		c.conf.Source = src
	}
}

// WithDefaultFont sets the font substituted for absent fonts.
func WithDefaultFont(name string) Option {
	return func(c *Coordinator) {
		c.conf.DefaultFont = name
	}
}

// WithStyles makes text styles known to both execution contexts.
func WithStyles(styles ...style.TextStyle) Option {
	return func(c *Coordinator) {
		c.conf.Styles = append(c.conf.Styles, styles...)
	}
}

// WithMode sets the initial execution strategy.
func WithMode(m Mode) Option {
	return func(c *Coordinator) {
		c.mode = m
	}
}

// New creates a coordinator, by default in inline mode.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		pending: make(map[string]chan Response),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.conf.Source == nil {
		c.conf.Source = resources.ConfiguredSource()
	}
	c.local = pipeline.New(c.conf)
	return c
}

// Mode returns the current execution strategy.
func (c *Coordinator) Mode() Mode {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.mode
}

// SetMode switches the execution strategy. Font stores of both strategies
// are kept. Calls in flight have to be completed before switching.
func (c *Coordinator) SetMode(m Mode) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.mode != m {
		tracer().Infof("coordinator switches from %s to %s mode", c.mode, m)
	}
	c.mode = m
}

// Destroy tears down the coordinator and its worker. Pending calls and
// all later calls fail with code EDESTROYED.
func (c *Coordinator) Destroy() {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.destroyed {
		return
	}
	c.destroyed = true
	close(c.done)
	if c.worker != nil {
		c.worker.Terminate()
	}
	tracer().Infof("coordinator destroyed, abandoning %d pending requests", len(c.pending))
	c.pending = make(map[string]chan Response)
}

// Pending returns the number of delegated requests in flight.
func (c *Coordinator) Pending() int {
	c.mx.Lock()
	defer c.mx.Unlock()
	return len(c.pending)
}

// Render lays out a document. A non-nil text style is registered with the
// executing pipeline and applies to documents without a style name.
func (c *Coordinator) Render(ctx context.Context, doc *mtext.Document, textStyle *style.TextStyle,
	colors color.Context) (*geometry.Result, error) {
	//
	mode, err := c.strategy()
	if err != nil {
		return nil, err
	}
	if mode == Inline {
		return c.local.Render(doc, textStyle, colors), nil
	}
	resp, err := c.call(ctx, OpRender, RenderData{Document: doc, Style: textStyle, Colors: colors})
	if err != nil {
		return nil, err
	}
	msg, err := decodeRender(&resp)
	if err != nil {
		return nil, err
	}
	return transfer.Decode(msg)
}

// LoadFonts loads fonts into the font store of the current execution
// strategy. It returns the normalized names of the fonts present
// afterwards. Fonts which cannot be loaded are missing from the result.
func (c *Coordinator) LoadFonts(ctx context.Context, names []string) ([]string, error) {
	mode, err := c.strategy()
	if err != nil {
		return nil, err
	}
	if mode == Inline {
		return c.local.LoadFonts(ctx, names), nil
	}
	resp, err := c.call(ctx, OpLoadFonts, LoadFontsData{Fonts: names})
	if err != nil {
		return nil, err
	}
	var res LoadFontsResult
	if err := unmarshal(resp.Data, &res); err != nil {
		return nil, err
	}
	return res.Loaded, nil
}

// ListFonts lists the fonts available to the current execution strategy.
func (c *Coordinator) ListFonts(ctx context.Context) ([]fontregistry.Descriptor, error) {
	mode, err := c.strategy()
	if err != nil {
		return nil, err
	}
	if mode == Inline {
		return c.local.ListFonts(ctx)
	}
	resp, err := c.call(ctx, OpListFonts, nil)
	if err != nil {
		return nil, err
	}
	var res ListFontsResult
	if err := unmarshal(resp.Data, &res); err != nil {
		return nil, err
	}
	return res.Fonts, nil
}

func (c *Coordinator) strategy() (Mode, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.destroyed {
		return c.mode, core.Error(core.EDESTROYED, "coordinator destroyed")
	}
	return c.mode, nil
}

// call sends a request to the worker and waits for the response carrying
// the same id.
func (c *Coordinator) call(ctx context.Context, op Op, data interface{}) (Response, error) {
	id := "req-" + strconv.FormatUint(atomic.AddUint64(&c.seq, 1), 10)
	req, err := NewRequest(op, id, data)
	if err != nil {
		return Response{}, err
	}
	ch := make(chan Response, 1)
	c.mx.Lock()
	if c.destroyed {
		c.mx.Unlock()
		return Response{}, core.Error(core.EDESTROYED, "coordinator destroyed")
	}
	w := c.startWorker()
	c.pending[id] = ch
	c.mx.Unlock()
	if err := w.Post(req); err != nil {
		c.forget(id)
		return Response{}, err
	}
	select {
	case resp := <-ch:
		if !resp.Success {
			return resp, resp.Err()
		}
		return resp, nil
	case <-ctx.Done():
		c.forget(id)
		return Response{}, ctx.Err()
	case <-c.done:
		return Response{}, core.Error(core.EDESTROYED, "coordinator destroyed while waiting for %s", id)
	}
}

// startWorker starts the worker on first use. It has to be called with
// the lock held.
func (c *Coordinator) startWorker() *Worker {
	if c.worker == nil {
		c.worker = StartWorker(pipeline.New(c.conf))
		go c.route(c.worker)
	}
	return c.worker
}

// route hands responses of worker w to the waiting callers.
func (c *Coordinator) route(w *Worker) {
	for {
		select {
		case <-w.Done():
			return
		case resp := <-w.Responses():
			c.mx.Lock()
			ch, ok := c.pending[resp.ID]
			delete(c.pending, resp.ID)
			c.mx.Unlock()
			if !ok {
				tracer().Errorf("dropping response to unknown request %q", resp.ID)
				continue
			}
			ch <- resp
		}
	}
}

func (c *Coordinator) forget(id string) {
	c.mx.Lock()
	defer c.mx.Unlock()
	delete(c.pending, id)
}
