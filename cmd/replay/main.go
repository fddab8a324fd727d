// Command replay runs a captured feed body through the pipeline offline and
// prints a summary of the final snapshot. It is useful for checking a
// thresholds file against real data before deploying it.
//
// Usage:
//
//	go run ./cmd/replay \
//	  -file testdata/feed.txt \
//	  -thresholds config/thresholds.yaml \
//	  -at 2024-05-02T09:30:00Z \
//	  -out result.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/sensor-feed-dashboard/internal/adapter/feed"
	"github.com/couchcryptid/sensor-feed-dashboard/internal/config"
	"github.com/couchcryptid/sensor-feed-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-feed-dashboard/internal/observability"
	"github.com/couchcryptid/sensor-feed-dashboard/internal/pipeline"
)

// fileConnector serves a captured feed body as if it were the live stream.
type fileConnector struct {
	path string
}

func (c fileConnector) Connect(_ context.Context) (pipeline.LineReader, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, err
	}
	return feed.NewStream(f, 0, clockwork.NewRealClock()), nil
}

func main() {
	file := flag.String("file", "", "captured feed body, one event-stream line per line")
	thresholds := flag.String("thresholds", "", "thresholds YAML file (default: built-in thresholds)")
	at := flag.String("at", "", "fixed RFC3339 receive time for reproducible output")
	out := flag.String("out", "", "write the final result as JSON to this path")
	verbose := flag.Bool("v", false, "log discarded messages")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(os.Stdout, options{
		file:       *file,
		thresholds: *thresholds,
		at:         *at,
		out:        *out,
		verbose:    *verbose,
	}))
}

type options struct {
	file       string
	thresholds string
	at         string
	out        string
	verbose    bool
}

func run(w io.Writer, opts options) int {
	set, err := config.LoadThresholds(opts.thresholds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load thresholds: %v\n", err)
		return 1
	}

	if opts.at != "" {
		ts, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: invalid -at: %v\n", err)
			return 1
		}
		domain.SetClock(clockwork.NewFakeClockAt(ts))
		defer domain.SetClock(nil)
	}

	level := "error"
	if opts.verbose {
		level = "warn"
	}
	logger := sharedobs.NewLogger(level, "text")
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())

	p := pipeline.New(fileConnector{path: opts.file}, set, logger, metrics)
	if err := p.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	st := p.Status()
	fmt.Fprintf(w, "Session:    %s (%s)\n", st.SessionID, st.Closure)
	fmt.Fprintf(w, "Snapshots:  %d accepted, %d discarded\n", st.SnapshotsAccepted, st.MessagesDiscarded)

	result := p.Current()
	if result == nil {
		fmt.Fprintln(w, "No snapshot received.")
		return 0
	}

	fmt.Fprintf(w, "Points:     %d (%d critical, %d warning, %d ok)\n",
		len(result.Points), result.Counts.Critical, result.Counts.Warning, result.Counts.OK)
	fmt.Fprintln(w, "Averages:")
	for _, f := range domain.Fields {
		fmt.Fprintf(w, "  %-12s %s\n", f, formatMean(result.Averages.Get(f)))
	}

	if opts.out != "" {
		if err := writeResult(opts.out, result); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		logger.Debug("result written", "path", opts.out)
	}
	return 0
}

func formatMean(m domain.Mean) string {
	if !m.Valid {
		return "no data"
	}
	return fmt.Sprintf("%.2f", m.Value)
}

func writeResult(path string, result *domain.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // output fixture, not a secret
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
