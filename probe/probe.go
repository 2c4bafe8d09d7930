// Package probe issues rate-limited requests for single segments and classifies the outcome.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/segrab-cli/segrab/log"
	"github.com/segrab-cli/segrab/source"
)

// Status is the classified outcome of a probe.
type Status int

const (
	// Present means the origin served the segment.
	Present Status = iota
	// Absent means the origin definitively does not have the segment.
	Absent
	// Transient means the request failed without proving absence.
	Transient
)

func (s Status) String() string {
	switch s {
	case Present:
		return "present"
	case Absent:
		return "absent"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ErrAbsent is returned by Fetch when the origin does not have the segment.
var ErrAbsent = errors.New("segment absent")

// TransientError is returned when a segment could not be classified after every retry.
type TransientError struct {
	ID       int
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("segment %d: transient failure after %d attempts: %v", e.ID, e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Result is the outcome of probing one segment.
type Result struct {
	ID     int
	Status Status
	// Payload holds the segment bytes when Status is Present.
	Payload []byte
	// Code is the last HTTP status code seen, zero on transport errors.
	Code int
}

// Options bound every request.
type Options struct {
	// Timeout limits a single request, including reading its body.
	Timeout time.Duration
	// Delay is slept before every request, retries included.
	Delay time.Duration
	// Retries is how many times a transient failure is retried.
	Retries int
}

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Prober probes and fetches the segments of one resource. Calls must not overlap.
type Prober struct {
	client   Doer
	resource source.Resource
	options  Options
	requests atomic.Int64
}

// New returns a prober for resource.
func New(client Doer, resource source.Resource, options Options) *Prober {
	if options.Retries < 0 {
		options.Retries = 0
	}

	return &Prober{
		client:   client,
		resource: resource,
		options:  options,
	}
}

// Resource returns the probed resource.
func (p *Prober) Resource() source.Resource {
	return p.resource
}

// Requests returns how many requests were sent so far.
func (p *Prober) Requests() int {
	return int(p.requests.Load())
}

// Probe classifies segment id, retrying transient failures.
// A non-nil error is either a *TransientError or the context's error.
func (p *Prober) Probe(ctx context.Context, id int) (Result, error) {
	attempts := p.options.Retries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := p.attempt(ctx, id)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{ID: id, Status: Transient}, ctxErr
		}

		if result.Status != Transient {
			return result, nil
		}

		lastErr = err
		log.WithFields(log.Fields{"id": id, "attempt": attempt, "code": result.Code}).
			Warnf("transient failure: %v", err)
	}

	return Result{ID: id, Status: Transient}, &TransientError{ID: id, Attempts: attempts, Err: lastErr}
}

// Fetch returns the bytes of a segment that is expected to exist.
func (p *Prober) Fetch(ctx context.Context, id int) ([]byte, error) {
	result, err := p.Probe(ctx, id)
	if err != nil {
		return nil, err
	}

	if result.Status == Absent {
		return nil, fmt.Errorf("%w: segment %d (status %d)", ErrAbsent, id, result.Code)
	}

	return result.Payload, nil
}

func (p *Prober) attempt(ctx context.Context, id int) (Result, error) {
	if err := sleep(ctx, p.options.Delay); err != nil {
		return Result{ID: id, Status: Transient}, err
	}

	reqCtx := ctx
	if p.options.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, p.options.Timeout)
		defer cancel()
	}

	url := p.resource.URL(id)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return Result{ID: id, Status: Absent}, fmt.Errorf("create request: %w", err)
	}

	p.requests.Add(1)
	log.Debugf("GET %s", url)

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{ID: id, Status: Transient}, err
	}
	defer resp.Body.Close()

	status := Classify(resp.StatusCode)
	if status != Present {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Result{ID: id, Status: status, Code: resp.StatusCode}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{ID: id, Status: Transient, Code: resp.StatusCode}, fmt.Errorf("read body: %w", err)
	}

	return Result{ID: id, Status: Present, Payload: payload, Code: resp.StatusCode}, nil
}

// Classify maps an HTTP status code to a probe status.
// Request timeouts, rate limiting and server errors are transient;
// any other client error proves absence.
func Classify(code int) Status {
	switch {
	case code >= 200 && code < 300:
		return Present
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return Transient
	case code >= 500:
		return Transient
	default:
		return Absent
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
