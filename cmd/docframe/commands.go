package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/docframe/pkg/columnar"
	"github.com/ajitpratap0/docframe/pkg/compression"
	"github.com/ajitpratap0/docframe/pkg/config"
	"github.com/ajitpratap0/docframe/pkg/formats"
	"github.com/ajitpratap0/docframe/pkg/logger"
	"github.com/ajitpratap0/docframe/pkg/metrics"
	"github.com/ajitpratap0/docframe/pkg/observability"
	"github.com/ajitpratap0/docframe/pkg/reader"
	"github.com/ajitpratap0/docframe/pkg/source"
)

func newSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Infer and print the schema of a collection",
		Example: `  docframe schema --connection-str mongodb://localhost:27017 --db shop --collection orders
  docframe schema --input orders.jsonl.zst --infer-schema-len 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				sc, err := s.reader.InferSchema(ctx, s.cfg.Read.InferSchemaLength, source.Projection(s.cfg.Read.Columns))
				if err != nil {
					return err
				}
				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.AppendHeader(table.Row{"#", "Field", "Type", "Sampled As"})
				for i, f := range sc.Fields() {
					sampled := f.Type.String()
					if f.Inferred != nil {
						sampled = f.Inferred.String()
					}
					t.AppendRow(table.Row{i, f.Name, f.Type.String(), sampled})
				}
				t.Render()
				return nil
			})
		},
	}
	addSourceFlags(cmd.Flags())
	return cmd
}

func newReadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read a collection into a table and write or preview it",
		Long: `Read a collection into a typed table. Without --format the first rows are
printed as a preview; with --format the table is written to --output (or stdout).`,
		Example: `  docframe read --db shop --collection orders --columns sku,qty --limit 1000
  docframe read -i orders.jsonl --format parquet --output orders.parquet
  docframe read -c docframe.yaml --format json --compression zstd --output orders.jsonl.zst`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				cpuFile, _ := cmd.Flags().GetString("cpuprofile")
				memFile, _ := cmd.Flags().GetString("memprofile")
				prof := &profiler{cpuFile: cpuFile, memFile: memFile, log: s.log}
				if err := prof.start(); err != nil {
					return err
				}
				t, err := s.reader.Read(ctx, s.cfg.ReadOptions())
				prof.stop()
				if err != nil {
					return err
				}
				defer t.Release()

				if s.cfg.Output.Format == "" {
					printPreview(cmd.OutOrStdout(), t, s.cfg.Output.Preview)
					return nil
				}
				return writeOutput(cmd.OutOrStdout(), t, s.cfg.Output, s.log)
			})
		},
	}

	addSourceFlags(cmd.Flags())
	cmd.Flags().Int("limit", 0, "Maximum number of documents to read (-1 = unlimited)")
	cmd.Flags().Int("workers", 0, "Column groups filled in parallel")
	cmd.Flags().Int("batch-size", 0, "Documents per parallel batch")
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringP("format", "f", "", "Output format: arrow, parquet, avro, json, csv (default: preview)")
	cmd.Flags().String("codec", "", "Codec inside the output format (snappy, zstd, lz4, gzip, deflate, none)")
	cmd.Flags().String("compression", "", "Compress the output stream (gzip, zstd, lz4, snappy, s2)")
	cmd.Flags().Int("compression-level", 0, "Stream compression level (1-9)")
	cmd.Flags().Int("preview", 0, "Rows shown in the preview")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while reading")
	cmd.Flags().String("cpuprofile", "", "Write a CPU profile of the read to this file")
	cmd.Flags().String("memprofile", "", "Write a heap profile taken after the read to this file")
	return cmd
}

// session holds what one command invocation sets up and tears down.
type session struct {
	cfg    *config.Config
	log    *zap.Logger
	reader *reader.Reader
}

func withSession(cmd *cobra.Command, fn func(context.Context, *session) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("component", "docframe-cli"))

	tc := cfg.TracingConfig()
	tc.ServiceVersion = version
	if err := observability.InitTracing(tc); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	if cfg.Observability.MetricsAddr != "" {
		srv := serveMetrics(cfg.Observability.MetricsAddr, log)
		defer func() { _ = srv.Close() }()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Read.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Read.Timeout)
		defer cancel()
	}

	r, err := openReader(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := r.Close(context.Background()); err != nil {
			log.Warn("failed to close source", zap.Error(err))
		}
	}()

	started := time.Now()
	err = fn(ctx, &session{cfg: cfg, log: log, reader: r})
	if rss, merr := metrics.SampleMemory(); merr == nil {
		log.Debug("command finished",
			zap.Duration("duration", time.Since(started)),
			zap.Uint64("rss_bytes", rss))
	}
	return err
}

func openReader(ctx context.Context, cfg *config.Config, log *zap.Logger) (*reader.Reader, error) {
	if cfg.Source.Input != "" {
		return reader.OpenFile(cfg.Source.Input, log)
	}

	connectCtx := ctx
	if cfg.Source.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.Source.ConnectTimeout)
		defer cancel()
	}
	src, err := source.Connect(connectCtx, cfg.SourceOptions(), log, source.WithBatchSize(cfg.Source.CursorBatchSize))
	if err != nil {
		return nil, err
	}
	return reader.New(src, log), nil
}

func serveMetrics(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))
	return srv
}

// writeOutput writes t in the configured format to the output file or
// stdout, through stream compression when one is configured.
func writeOutput(stdout io.Writer, t *columnar.Table, out config.OutputConfig, log *zap.Logger) (err error) {
	format, err := formats.ParseFormat(out.Format)
	if err != nil {
		return err
	}
	alg, err := compression.ParseAlgorithm(out.Compression)
	if err != nil {
		return err
	}

	dst := stdout
	if out.Path != "" && out.Path != "-" {
		f, ferr := os.Create(out.Path) //nolint:gosec // G304: path comes from the operator
		if ferr != nil {
			return fmt.Errorf("failed to create output file: %w", ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		dst = f
	}

	cw, err := compression.NewWriter(dst, alg, compression.Level(out.CompressionLevel))
	if err != nil {
		return err
	}

	rows, werr := formats.WriteTable(cw, t, &formats.WriterConfig{Format: format, Compression: out.Codec})
	if cerr := cw.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return werr
	}

	log.Info("table written",
		zap.String("format", string(format)),
		zap.String("compression", string(alg)),
		zap.String("path", out.Path),
		zap.Int64("rows", rows))
	return nil
}

// printPreview renders the first n rows of t.
func printPreview(w io.Writer, t *columnar.Table, n int) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)

	header := make(table.Row, 0, t.NumCols())
	for _, f := range t.Schema().Fields() {
		header = append(header, fmt.Sprintf("%s\n%s", f.Name, f.Type))
	}
	tw.AppendHeader(header)

	if n <= 0 || n > t.NumRows() {
		n = t.NumRows()
	}
	for row := 0; row < n; row++ {
		r := make(table.Row, t.NumCols())
		for col := range r {
			v := t.Value(col, row)
			if v == nil {
				v = "null"
			}
			r[col] = v
		}
		tw.AppendRow(r)
	}
	tw.SetCaption("shape: (%d, %d)", t.NumRows(), t.NumCols())
	tw.Render()
}
