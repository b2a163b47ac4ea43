package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/litescript/ls-ephemeris/internal/catalog"
	"github.com/litescript/ls-ephemeris/internal/flags"
	"github.com/litescript/ls-ephemeris/internal/logging"
	"github.com/litescript/ls-ephemeris/internal/planetary"
	"github.com/litescript/ls-ephemeris/internal/state"
	"github.com/litescript/ls-ephemeris/internal/ui"
)

const (
	minInterval = 1 * time.Second
	maxInterval = 1 * time.Hour
)

type watchOptions struct {
	interval    time.Duration
	metricsAddr string
	headless    bool
	count       int
	bodies      []string
}

func newWatchCmd(a *app) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recompute positions periodically and show them live",
		Long: `Recompute every body at the current instant on an interval and show
the results in a terminal UI, with ingress, station and lunation events.
Without a terminal, or with --headless, tables are printed instead.

Examples:
  ls-ephemeris watch --observer 2.35,48.85
  ls-ephemeris watch --headless --interval 1m --count 10
  ls-ephemeris watch --metrics-addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("interval") {
				opts.interval = a.cfg.WatchInterval
			}
			if !cmd.Flags().Changed("metrics-addr") {
				opts.metricsAddr = a.cfg.MetricsAddr
			}
			return runWatch(cmd.Context(), a, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&opts.interval, "interval", 10*time.Second, "recompute interval (default from LSE_WATCH_INTERVAL)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "print tables instead of starting the UI")
	cmd.Flags().IntVar(&opts.count, "count", 0, "stop after this many updates (headless only, 0 = forever)")
	cmd.Flags().StringSliceVar(&opts.bodies, "bodies", nil, "bodies to watch (default all)")
	return cmd
}

func clampInterval(d time.Duration) time.Duration {
	switch {
	case d < minInterval:
		return minInterval
	case d > maxInterval:
		return maxInterval
	default:
		return d
	}
}

func runWatch(ctx context.Context, a *app, opts *watchOptions, out io.Writer) error {
	logger := a.log.Named("watch")

	var bodies []catalog.ID
	for _, name := range opts.bodies {
		b, err := catalog.LookupByName(name)
		if err != nil {
			return err
		}
		bodies = append(bodies, b.ID)
	}

	sess, err := a.openSession()
	if err != nil {
		return err
	}
	defer sess.Shutdown()

	if _, ok := sess.Observer(); !ok {
		return explain(planetary.ErrNoObserver)
	}

	stateCfg := state.DefaultConfig()
	stateCfg.RefreshInterval = clampInterval(opts.interval)
	stateMgr := state.NewManager(stateCfg)
	stateMgr.OnEvent(func(e state.Event) {
		a.collector.ObserveEvent(string(e.Type))
		logger.Info("event %s: %s at %.4f", e.Type, e.Body, e.Longitude)
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.metricsAddr != "" {
		stop := serveMetrics(opts.metricsAddr, a, logger)
		defer stop()
	}

	w := &watcher{sess: sess, state: stateMgr, bodies: bodies, log: logger}

	headless := opts.headless || !isTerminal(out)
	if headless {
		return w.runHeadless(ctx, out, opts.count)
	}

	p := tea.NewProgram(ui.New(stateMgr, sess.EngineName()), tea.WithAltScreen(), tea.WithContext(ctx))
	w.send = p.Send

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		w.loop(ctx, 0, nil)
	}()

	_, err = p.Run()
	cancel()
	<-loopDone
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run UI: %w", err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// serveMetrics starts the /metrics listener and returns its shutdown.
func serveMetrics(addr string, a *app, logger *logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// watcher recomputes records and feeds the state manager.
type watcher struct {
	sess   *planetary.Session
	state  *state.Manager
	bodies []catalog.ID
	log    *logging.Logger
	send   func(tea.Msg)
}

// loop updates immediately and then on every tick until ctx ends or count
// updates have been made. after runs following each update.
func (w *watcher) loop(ctx context.Context, count int, after func()) {
	done := 0
	update := func() bool {
		w.update(ctx)
		if after != nil {
			after()
		}
		done++
		return count > 0 && done >= count
	}

	if update() {
		return
	}

	ticker := time.NewTicker(w.state.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("watch loop shutting down")
			return
		case <-ticker.C:
			if update() {
				return
			}
		}
	}
}

func (w *watcher) update(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	records, err := w.sess.ComputeRecords(ctx, w.bodies, time.Now().UTC())
	elapsed := time.Since(start)

	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		w.log.Error("compute failed: %v", err)
		w.state.Update(nil, elapsed, err)
		if w.send != nil {
			w.send(ui.ErrorMsg{Error: err})
		}
		return
	}

	w.log.Debug("computed %d records in %v", len(records), elapsed)
	w.state.Update(records, elapsed, nil)
	if w.send != nil {
		w.send(ui.DataUpdateMsg{Snapshot: w.state.Snapshot()})
	}
}

func (w *watcher) runHeadless(ctx context.Context, out io.Writer, count int) error {
	var printed uint64
	w.loop(ctx, count, func() {
		snap := w.state.Snapshot()
		if snap.LastError != nil {
			fmt.Fprintf(out, "Error: %v\n", snap.LastError)
			return
		}
		planetary.WriteTable(out, snap.Records, flags.FrameGeocentric, flags.ZodiacTropical)
		printed = writeNewEvents(out, snap, printed)
		fmt.Fprintln(out)
	})

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// writeNewEvents prints the events of snap numbered after last and returns
// the highest number seen. Events that left the ring buffer before they
// could be printed are reported as a count.
func writeNewEvents(out io.Writer, snap state.Snapshot, last uint64) uint64 {
	if snap.EventCount <= last {
		return last
	}

	fmt.Fprintln(out)
	if len(snap.Events) > 0 {
		if first := snap.Events[0].Seq; first > last+1 {
			fmt.Fprintf(out, "(%d earlier events dropped)\n", first-last-1)
		}
	}
	for _, e := range snap.Events {
		if e.Seq <= last {
			continue
		}
		fmt.Fprintf(out, "%s %-9s %s\n", e.Timestamp.Format(time.RFC3339), e.Type, e.Body)
	}
	return snap.EventCount
}
