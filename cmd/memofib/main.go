// Command memofib prints a memoized Fibonacci number.
//
// With no flags it computes fib(40) with fib(0) = fib(1) = 1 and prints
//
//	fib(40) = 165580141
//
// Optional flags select another index, the overflow policy, logging, where
// to persist the memo table and a Pushgateway for run metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/memofib"
	"github.com/hupe1980/memofib/codec"
	"github.com/hupe1980/memofib/metrics/prometheus"
	"github.com/spf13/pflag"
)

const defaultN = 40

type config struct {
	n         int
	overflow  string
	logLevel  string
	logFormat string

	snapshot snapshotConfig

	pushgateway string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "memofib:", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	var cfg config

	fs := pflag.NewFlagSet("memofib", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.IntVar(&cfg.n, "n", defaultN, "index of the Fibonacci number to compute")
	fs.StringVar(&cfg.overflow, "overflow", "error", "int64 overflow policy: error or wrap")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.StringVar(&cfg.logFormat, "log-format", "text", "log format: text or json")

	fs.StringVar(&cfg.snapshot.dir, "snapshot-dir", "", "save the memo table to this local directory")
	fs.StringVar(&cfg.snapshot.backend, "snapshot-backend", "", "remote snapshot backend: s3 or minio")
	fs.StringVar(&cfg.snapshot.bucket, "snapshot-bucket", "", "bucket for remote snapshots")
	fs.StringVar(&cfg.snapshot.prefix, "snapshot-prefix", "memofib/", "key prefix for remote snapshots")
	fs.StringVar(&cfg.snapshot.name, "snapshot-name", "", "snapshot blob name (default fib-<n>.snap)")
	fs.StringVar(&cfg.snapshot.compression, "snapshot-compression", codec.Default.String(), "snapshot compression: none, zstd or lz4")
	fs.StringVar(&cfg.snapshot.minioEndpoint, "minio-endpoint", "localhost:9000", "MinIO endpoint")
	fs.StringVar(&cfg.snapshot.minioAccessKey, "minio-access-key", "", "MinIO access key")
	fs.StringVar(&cfg.snapshot.minioSecretKey, "minio-secret-key", "", "MinIO secret key")
	fs.BoolVar(&cfg.snapshot.minioSecure, "minio-secure", false, "use TLS for MinIO")
	fs.StringVar(&cfg.snapshot.s3Region, "s3-region", "", "AWS region override")
	fs.StringVar(&cfg.snapshot.s3Endpoint, "s3-endpoint", "", "custom S3-compatible endpoint")
	fs.BoolVar(&cfg.snapshot.list, "list-snapshots", false, "list stored snapshots and exit")
	fs.StringVar(&cfg.snapshot.remove, "delete-snapshot", "", "delete the named snapshot and exit")

	fs.StringVar(&cfg.pushgateway, "pushgateway", "", "push run metrics to this Pushgateway URL")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if fs.NArg() > 0 {
		return config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if cfg.snapshot.name == "" {
		cfg.snapshot.name = fmt.Sprintf("fib-%d.snap", cfg.n)
	}

	return cfg, nil
}

func newLogger(level, format string, w io.Writer) (*memofib.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return memofib.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return memofib.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	policy, err := memofib.ParseOverflowPolicy(cfg.overflow)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.logLevel, cfg.logFormat, stderr)
	if err != nil {
		return err
	}

	compression, ok := codec.ByName(cfg.snapshot.compression)
	if !ok {
		return fmt.Errorf("invalid snapshot compression %q", cfg.snapshot.compression)
	}

	opts := []memofib.Option{
		memofib.WithOverflowPolicy(policy),
		memofib.WithLogger(logger),
		memofib.WithCompression(compression),
	}

	var pc *prometheus.Collector
	if cfg.pushgateway != "" {
		pc = prometheus.New(nil)
		opts = append(opts, memofib.WithMetricsCollector(pc))
	}

	calc := memofib.New(opts...)

	if cfg.snapshot.list || cfg.snapshot.remove != "" {
		return manageSnapshots(ctx, calc, cfg.snapshot, stdout)
	}

	res, err := calc.Compute(ctx, cfg.n)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(stdout, "fib(%d) = %d\n", res.N, res.Value); err != nil {
		return err
	}

	if cfg.snapshot.enabled() {
		store, err := cfg.snapshot.open(ctx)
		if err != nil {
			return err
		}
		if err := calc.SaveSnapshot(ctx, store, cfg.snapshot.name, res.Table); err != nil {
			return err
		}
	}

	if pc != nil {
		if err := pc.Push(ctx, cfg.pushgateway, "memofib"); err != nil {
			return fmt.Errorf("push metrics: %w", err)
		}
	}

	return nil
}

func manageSnapshots(ctx context.Context, calc *memofib.Calculator, cfg snapshotConfig, stdout io.Writer) error {
	if !cfg.enabled() {
		return errors.New("--snapshot-dir or --snapshot-backend is required")
	}

	store, err := cfg.open(ctx)
	if err != nil {
		return err
	}

	if cfg.remove != "" {
		return calc.DeleteSnapshot(ctx, store, cfg.remove)
	}

	names, err := calc.ListSnapshots(ctx, store, "")
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintln(stdout, name); err != nil {
			return err
		}
	}

	return nil
}
