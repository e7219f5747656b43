package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"accelerometer_worker/bridge"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func rootCmd() *cobra.Command {
	var (
		captureID   int64
		service     bool
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:           "accelworker [capture-id]",
		Short:         "Summarize accelerometer captures into per-axis statistics",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if captureID == 0 && len(args) > 0 {
				v, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return errors.Wrapf(err, "invalid capture id %q", args[0])
				}
				captureID = v
			}
			return runWorker(cmd.Context(), captureID, service || captureID == 0, metricsAddr)
		},
	}
	cmd.Flags().Int64Var(&captureID, "capture-id", 0, "ID of captures row to summarize (omit to run service)")
	cmd.Flags().BoolVar(&service, "service", false, "Run as background service listening to the Sidekiq queue")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	cmd.AddCommand(calcCmd(), helloCmd())
	return cmd
}

func runWorker(ctx context.Context, captureID int64, service bool, metricsAddr string) error {
	// Prefer the Rails app .env if present.
	cfg, err := loadConfig("../accelerometer_ui/.env", ".env")
	if err != nil {
		return err
	}
	if err := configureLogging(cfg.LogLevel); err != nil {
		return err
	}
	dsn, err := cfg.DSN()
	if err != nil {
		return errors.Wrap(err, "database config error")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return errors.Wrap(err, "connect error")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "database not reachable")
	}
	st := newStore(db)

	if !service {
		if metricsAddr != "" {
			log.Warn("--metrics-addr is only served with --service")
		}
		return processCapture(ctx, st, captureID)
	}

	q, err := newJobQueue(cfg.RedisURL, cfg.QueueKey())
	if err != nil {
		return err
	}
	defer q.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if metricsAddr != "" {
		ln, err := net.Listen("tcp", metricsAddr)
		if err != nil {
			return errors.Wrap(err, "metrics listener")
		}
		go serveMetrics(ctx, ln)
	}
	log.WithField("queue", cfg.QueueKey()).Info("listening for jobs")
	runService(ctx, st, q)
	return nil
}

// serveMetrics serves /metrics on ln until ctx is done.
func serveMetrics(ctx context.Context, ln net.Listener) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("metrics server stopped")
	}
}

func calcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calc VALUE...",
		Short: "Print statistics for the given samples",
		Args:  cobra.MinimumNArgs(1),
		// Negative samples such as -3 would otherwise parse as flags.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && args[0] == "--" {
				args = args[1:]
			}
			return runCalc(cmd.OutOrStdout(), args)
		},
	}
}

func runCalc(out io.Writer, args []string) error {
	samples := make([]float64, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid sample %q", a)
		}
		samples = append(samples, v)
	}

	w := bridge.New(nil)
	count := len(samples)
	lo, err := w.MinArray(samples, count)
	if err != nil {
		return err
	}
	hi, err := w.MaxArray(samples, count)
	if err != nil {
		return err
	}
	mean, err := w.MeanArray(samples, count)
	if err != nil {
		return err
	}
	median, err := w.MedianArray(samples, count)
	if err != nil {
		return err
	}
	stdev, err := w.StdevArray(samples, mean, count)
	if err != nil {
		return err
	}
	summary, err := w.SummaryArray(samples, count)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "COUNT %d\n", count)
	fmt.Fprintf(out, "MIN %4.2f MAX %4.2f\n", lo, hi)
	fmt.Fprintf(out, "MEAN %4.2f MEDIAN %4.2f STDEV %4.4f\n", mean, median, stdev)
	fmt.Fprintf(out, "Q1 %4.2f Q3 %4.2f ZERO CROSSINGS %d\n", summary.Q1, summary.Q3, summary.ZeroCrossings)
	return nil
}

func helloCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hello [NAME]",
		Short: "Log a greeting through the bridge",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			name := "World"
			if len(args) > 0 {
				name = args[0]
			}
			bridge.New(nil).Hello(name)
		},
	}
}
