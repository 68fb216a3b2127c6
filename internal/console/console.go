// Package console owns the state of the dual-surface command console: the
// editable input text, the read-only output text and the execute round trip
// that turns one into the other.
package console

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"diskconsole/internal/annotate"
	"diskconsole/internal/grammar"
)

// Executor turns command text into output text. Implementations talk to the
// remote simulator.
type Executor interface {
	Execute(ctx context.Context, command string) (string, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, command string) (string, error)

func (f ExecutorFunc) Execute(ctx context.Context, command string) (string, error) {
	return f(ctx, command)
}

// State is a snapshot of the console.
type State struct {
	Input     string
	Output    string
	Executing bool
	// Pending counts execute requests without a reply yet.
	Pending int
	// Seq is the newest request issued, Applied the newest one whose reply
	// reached the output surface.
	Seq     uint64
	Applied uint64
}

// Request is one execute round trip as issued.
type Request struct {
	Seq       uint64
	Command   string
	StartedAt time.Time
}

// Result is the reply to a Request.
type Result struct {
	Seq    uint64
	Output string
	Err    error
	Took   time.Duration
}

const defaultHistoryLimit = 50

// Console is safe for concurrent use; the TUI drives it from the event loop
// while headless callers may resolve replies from other goroutines.
type Console struct {
	mu      sync.Mutex
	input   string
	output  string
	pending map[uint64]struct{}
	seq     uint64
	applied uint64

	history      []string
	historyLimit int

	out *annotate.Annotator
	now func() time.Time
}

type Option func(*Console)

// WithOutput mounts the console with existing output text, which is
// annotated immediately.
func WithOutput(text string) Option {
	return func(c *Console) { c.output = text }
}

func WithInput(text string) Option {
	return func(c *Console) { c.input = text }
}

// WithHistoryLimit bounds the remembered command history.
func WithHistoryLimit(n int) Option {
	return func(c *Console) {
		if n > 0 {
			c.historyLimit = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Console) { c.now = now }
}

func New(opts ...Option) *Console {
	c := &Console{
		out:          annotate.New(),
		pending:      make(map[uint64]struct{}),
		historyLimit: defaultHistoryLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.output != "" {
		c.out.Update(c.output)
	}
	return c
}

func (c *Console) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Input:     c.input,
		Output:    c.output,
		Executing: len(c.pending) > 0,
		Pending:   len(c.pending),
		Seq:       c.seq,
		Applied:   c.applied,
	}
}

func (c *Console) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

func (c *Console) Output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output
}

// OutputAnnotator is the annotator bound to the output surface.
func (c *Console) OutputAnnotator() *annotate.Annotator {
	return c.out
}

// Annotations returns the current output annotations.
func (c *Console) Annotations() []annotate.Annotation {
	return c.out.Annotations()
}

// History returns the executed commands, oldest first.
func (c *Console) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.history...)
}

// OnInputChanged replaces the input text. Input is never annotated.
func (c *Console) OnInputChanged(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
}

// OnOutputReplaced replaces the output text and rescans it.
func (c *Console) OnOutputReplaced(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.output = text
	c.out.Update(text)
}

// OnExecuteRequested snapshots the input and issues a new request. The
// caller runs the returned request against an Executor and hands the reply
// to Resolve. Overlapping requests are allowed.
func (c *Console) OnExecuteRequested() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.pending[c.seq] = struct{}{}
	if cmd := strings.TrimSpace(c.input); cmd != "" {
		c.history = append(c.history, cmd)
		if len(c.history) > c.historyLimit {
			c.history = c.history[len(c.history)-c.historyLimit:]
		}
	}
	return Request{Seq: c.seq, Command: c.input, StartedAt: c.now()}
}

// Resolve applies the reply of a request. Only the reply to the newest
// request reaches the output; replies to superseded requests are dropped
// and Resolve reports false for them. A reply only settles its own request,
// so duplicates and unknown sequence numbers leave the pending set alone.
func (c *Console) Resolve(res Result) bool {
	c.mu.Lock()
	delete(c.pending, res.Seq)
	if res.Seq != c.seq || res.Seq <= c.applied {
		c.mu.Unlock()
		return false
	}
	text := res.Output
	if res.Err != nil {
		text = FailureText(res.Err)
	}
	c.applied = res.Seq
	c.output = text
	c.out.Update(text)
	c.mu.Unlock()
	return true
}

// Execute runs one full round trip and blocks until the reply is applied or
// dropped.
func (c *Console) Execute(ctx context.Context, exec Executor) (Result, bool) {
	req := c.OnExecuteRequested()
	res := Run(ctx, exec, req)
	return res, c.Resolve(res)
}

// Run calls exec for req. Executor errors are carried in the result.
func Run(ctx context.Context, exec Executor, req Request) Result {
	start := time.Now()
	if exec == nil {
		return Result{Seq: req.Seq, Err: ErrNoExecutor}
	}
	out, err := exec.Execute(ctx, req.Command)
	return Result{Seq: req.Seq, Output: out, Err: err, Took: time.Since(start)}
}

// ErrNoExecutor is reported when the console has nothing to execute with.
var ErrNoExecutor = errors.New("no executor configured")

// FailureText renders a transport failure as output text. It always starts
// with the error marker so the output annotator flags it.
func FailureText(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case errors.Is(err, context.Canceled):
		msg = "request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		msg = "request timed out"
	}
	msg = strings.ReplaceAll(strings.TrimSpace(msg), "\n", " ")
	return grammar.ErrorMarker + ": " + msg
}
