package client

import (
	"context"
	"errors"
	"sync"

	"github.com/Tiliavir/trivial-time-report/internal/model"
)

// ErrSendInProgress is returned when a send is requested while another one
// is still in flight.
var ErrSendInProgress = errors.New("a report is already being sent")

// State is the lifecycle position of a send action.
type State int

const (
	Idle State = iota
	Sending
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Sender is the capability the Dispatcher drives.
type Sender interface {
	SendReport(ctx context.Context, req model.ReportRequest) (string, error)
}

// Result is the outcome of one send action.
type Result struct {
	Message string
	Err     error
}

// OK reports whether the send succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Dispatcher runs send actions one at a time:
// Idle -> Sending -> Succeeded|Failed. A new action may start from any state
// except Sending.
type Dispatcher struct {
	sender Sender

	mu    sync.Mutex
	state State
	last  Result
}

// NewDispatcher returns an idle Dispatcher.
func NewDispatcher(s Sender) *Dispatcher {
	return &Dispatcher{sender: s}
}

// State returns the current state.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Last returns the result of the most recent completed send.
func (d *Dispatcher) Last() Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Send issues exactly one request for req and blocks until it completes.
func (d *Dispatcher) Send(ctx context.Context, req model.ReportRequest) Result {
	d.mu.Lock()
	if d.state == Sending {
		d.mu.Unlock()
		return Result{Err: ErrSendInProgress}
	}
	d.state = Sending
	d.mu.Unlock()

	msg, err := d.sender.SendReport(ctx, req)
	res := Result{Message: msg, Err: err}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.state = Failed
	} else {
		d.state = Succeeded
	}
	d.last = res
	return res
}
