package feed

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/sensor-feed-dashboard/internal/domain"
)

// maxLineSize bounds a single feed line. A snapshot of a few thousand points
// fits comfortably.
const maxLineSize = 4 << 20

type lineResult struct {
	line string
	err  error
}

// Stream is a lazy, non-restartable sequence of text lines read from a feed
// body. It implements pipeline.LineReader. A single goroutine scans the body;
// ReadLine pulls one line at a time.
type Stream struct {
	body        io.ReadCloser
	lines       chan lineResult
	done        chan struct{}
	closeOnce   sync.Once
	readTimeout time.Duration
	clock       clockwork.Clock
}

// NewStream starts scanning body. A positive readTimeout makes ReadLine fail
// with domain.ErrFeedStalled when no line arrives in time.
func NewStream(body io.ReadCloser, readTimeout time.Duration, clock clockwork.Clock) *Stream {
	s := &Stream{
		body:        body,
		lines:       make(chan lineResult),
		done:        make(chan struct{}),
		readTimeout: readTimeout,
		clock:       clock,
	}
	go s.scan()
	return s
}

func (s *Stream) scan() {
	defer close(s.lines)

	sc := bufio.NewScanner(s.body)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		if !s.send(lineResult{line: sc.Text()}) {
			return
		}
	}
	if err := sc.Err(); err != nil {
		s.send(lineResult{err: err})
	}
}

func (s *Stream) send(r lineResult) bool {
	select {
	case s.lines <- r:
		return true
	case <-s.done:
		return false
	}
}

// ReadLine blocks until the next line is available. It returns io.EOF when
// the source closes the stream.
func (s *Stream) ReadLine(ctx context.Context) (string, error) {
	var timeout <-chan time.Time
	if s.readTimeout > 0 {
		timer := s.clock.NewTimer(s.readTimeout)
		defer timer.Stop()
		timeout = timer.Chan()
	}

	select {
	case r, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return r.line, r.err
	case <-timeout:
		return "", domain.ErrFeedStalled
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the scanner and releases the body.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.body.Close()
	})
	return err
}
