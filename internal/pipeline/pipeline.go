package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/sensor-feed-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-feed-dashboard/internal/observability"
)

// ErrServerUnreachable wraps a failure to open the feed connection.
var ErrServerUnreachable = errors.New("server unreachable")

// LineReader yields feed lines one at a time. It returns io.EOF once the
// source closes the stream.
type LineReader interface {
	ReadLine(ctx context.Context) (string, error)
	Close() error
}

// Connector opens the feed.
type Connector interface {
	Connect(ctx context.Context) (LineReader, error)
}

// Sink receives every accepted result, in feed order.
type Sink interface {
	Publish(ctx context.Context, result *domain.Result) error
}

// NamedSink is implemented by sinks that label their own metrics.
type NamedSink interface {
	Name() string
}

// Pipeline coordinates one feed session: connect, then parse, aggregate and
// classify each line until the stream ends. It is the only writer of the
// current result.
type Pipeline struct {
	connector  Connector
	thresholds domain.ThresholdSet
	sinks      []Sink
	logger     *slog.Logger
	metrics    *observability.Metrics
	sessionID  string

	current atomic.Pointer[domain.Result]

	mu     sync.Mutex
	status Status
}

// New creates a Pipeline reading from c and classifying against thresholds.
func New(c Connector, thresholds domain.ThresholdSet, logger *slog.Logger, metrics *observability.Metrics, sinks ...Sink) *Pipeline {
	p := &Pipeline{
		connector:  c,
		thresholds: thresholds,
		sinks:      sinks,
		logger:     logger,
		metrics:    metrics,
		sessionID:  uuid.NewString(),
	}
	p.status = Status{State: StateAwaitingFirstSnapshot, SessionID: p.sessionID}
	p.metrics.PipelineState.Set(float64(StateAwaitingFirstSnapshot))
	return p
}

// SessionID identifies this feed session in logs and published results.
func (p *Pipeline) SessionID() string { return p.sessionID }

// Current returns the latest accepted result, or nil before the first
// snapshot. The result is shared and must not be modified.
func (p *Pipeline) Current() *domain.Result {
	return p.current.Load()
}

// View returns the session state and the result it currently shows, read
// together.
func (p *Pipeline) View() (State, *domain.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status.State, p.current.Load()
}

// Status returns a copy of the session status.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// CheckReadiness returns nil once a snapshot is available for display.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.current.Load() != nil {
		return nil
	}
	st := p.Status()
	if st.State == StateClosed {
		return fmt.Errorf("feed session closed: %s", st.Closure)
	}
	return errors.New("no snapshot received yet")
}

// Run connects to the feed and processes lines until the stream ends, the
// read timeout expires, or ctx is cancelled. The connection is attempted
// once. A clean end of stream, a stall, or cancellation return nil; a failed
// connect returns an error wrapping ErrServerUnreachable.
func (p *Pipeline) Run(ctx context.Context) error {
	logger := p.logger.With("session_id", p.sessionID)

	reader, err := p.connector.Connect(ctx)
	if err != nil {
		if ctx.Err() != nil {
			p.close(logger, ClosureCanceled, ctx.Err())
			return nil
		}
		err = fmt.Errorf("%w: %w", ErrServerUnreachable, err)
		p.close(logger, ClosureServerUnreachable, err)
		return err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Debug("feed close error", "error", err)
		}
	}()

	logger.Info("pipeline started")

	for {
		line, err := reader.ReadLine(ctx)
		if err != nil {
			return p.finish(ctx, logger, err)
		}
		p.HandleLine(ctx, line)
	}
}

// finish maps the error that ended the read loop to a closure.
func (p *Pipeline) finish(ctx context.Context, logger *slog.Logger, err error) error {
	switch {
	case errors.Is(err, io.EOF):
		p.close(logger, ClosureStreamClosed, nil)
		return nil
	case errors.Is(err, domain.ErrFeedStalled):
		p.close(logger, ClosureStalled, err)
		return nil
	case ctx.Err() != nil:
		p.close(logger, ClosureCanceled, ctx.Err())
		return nil
	default:
		err = fmt.Errorf("read feed: %w", err)
		p.close(logger, ClosureStreamError, err)
		return err
	}
}

// HandleLine processes one feed line. Lines without the data prefix are
// skipped silently. Undecodable or malformed data lines are reported and
// dropped, leaving the current result untouched. It reports whether the line
// produced a new snapshot.
func (p *Pipeline) HandleLine(ctx context.Context, line string) bool {
	start := time.Now()
	if p.Status().State == StateClosed {
		return false
	}
	p.metrics.LinesRead.Inc()

	snap, ok, err := domain.ParseLine(line)
	if err != nil {
		p.discard(err)
		return false
	}
	if !ok {
		p.metrics.LinesIgnored.Inc()
		return false
	}

	result := domain.BuildResult(p.sessionID, snap, p.thresholds)

	// The result and the state move together so View never pairs a result
	// with AWAITING_FIRST_SNAPSHOT.
	p.mu.Lock()
	if p.status.State == StateClosed {
		p.mu.Unlock()
		return false
	}
	p.current.Store(&result)
	if p.status.State == StateAwaitingFirstSnapshot {
		p.status.State = StateStreaming
		p.metrics.PipelineState.Set(float64(StateStreaming))
		p.logger.Info("first snapshot received", "session_id", p.sessionID, "points", snap.Len())
	}
	p.status.SnapshotsAccepted++
	p.status.LastSnapshotAt = snap.ReceivedAt
	p.mu.Unlock()

	p.observe(&result)
	p.publish(ctx, &result)

	p.metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
	return true
}

func (p *Pipeline) discard(err error) {
	reason := "decode"
	if errors.Is(err, domain.ErrMalformedSnapshot) {
		reason = "malformed"
	}
	p.metrics.MessagesDiscarded.WithLabelValues(reason).Inc()
	p.logger.Warn("discarding feed message", "session_id", p.sessionID, "reason", reason, "error", err)

	p.mu.Lock()
	p.status.MessagesDiscarded++
	p.status.LastNotice = &Notice{Reason: reason, Message: err.Error(), At: domain.Now()}
	p.mu.Unlock()
}

func (p *Pipeline) observe(r *domain.Result) {
	p.metrics.SnapshotsAccepted.Inc()
	p.metrics.SnapshotPoints.Set(float64(len(r.Points)))
	p.metrics.PointsBySeverity.WithLabelValues("critical").Set(float64(r.Counts.Critical))
	p.metrics.PointsBySeverity.WithLabelValues("warning").Set(float64(r.Counts.Warning))
	p.metrics.PointsBySeverity.WithLabelValues("ok").Set(float64(r.Counts.OK))
	for _, f := range domain.Fields {
		m := r.Averages.Get(f)
		if !m.Valid {
			p.metrics.FieldMean.DeleteLabelValues(string(f))
			continue
		}
		p.metrics.FieldMean.WithLabelValues(string(f)).Set(m.Value)
	}
}

// publish hands r to every sink. Sink failures are logged and counted; they
// never affect the current result.
func (p *Pipeline) publish(ctx context.Context, r *domain.Result) {
	for _, s := range p.sinks {
		if err := s.Publish(ctx, r); err != nil {
			name := "unknown"
			if n, ok := s.(NamedSink); ok {
				name = n.Name()
			}
			p.metrics.SinkPublishErrors.WithLabelValues(name).Inc()
			p.logger.Error("publish result failed", "session_id", p.sessionID, "sink", name, "error", err)
		}
	}
}

func (p *Pipeline) close(logger *slog.Logger, reason Closure, err error) {
	p.mu.Lock()
	p.status.State = StateClosed
	p.status.Closure = reason
	if err != nil {
		p.status.ClosureError = err.Error()
	}
	p.mu.Unlock()

	p.metrics.PipelineState.Set(float64(StateClosed))
	p.metrics.SessionsClosed.WithLabelValues(string(reason)).Inc()

	switch reason {
	case ClosureServerUnreachable, ClosureStreamError:
		logger.Error("feed session closed", "reason", reason, "error", err)
	case ClosureStalled:
		logger.Warn("feed session closed", "reason", reason, "error", err)
	default:
		logger.Info("feed session closed", "reason", reason)
	}
}
