package main

import (
	"context"
	"fmt"
	"io"
	"os"

	recordbatch "github.com/databricks/databricks-recordbatch-go"
	"github.com/databricks/databricks-recordbatch-go/internal/config"
	"github.com/databricks/databricks-recordbatch-go/ipcstream"
	"github.com/databricks/databricks-recordbatch-go/logger"
	"github.com/databricks/databricks-recordbatch-go/queryctx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFiles []string
	logLevel string
	lz4      bool
	output   string
	outLz4   bool
	quiet    bool
}

// NewRoot returns the root command
func NewRoot() *cobra.Command {
	o := rootOptions{}

	cmd := &cobra.Command{
		Use:          "rbcat [file]",
		Short:        "rbcat inspects and re-encodes Arrow IPC record batch streams",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrapf(err, "failed to open %s", args[0])
				}
				defer f.Close()
				in = f
			}
			return run(cmd.Context(), &o, in, cmd.OutOrStdout(), cmd.Flags().Changed("lz4"))
		},
	}

	cmd.Flags().StringSliceVar(&o.envFiles, "env-file", nil, "load RECORDBATCH_* settings from these files")
	cmd.Flags().StringVar(&o.logLevel, "log-level", "", "log level, overrides "+config.EnvLogLevel)
	cmd.Flags().BoolVar(&o.lz4, "lz4", false, "input is lz4 framed, overrides "+config.EnvUseLz4Compression)
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "re-encode the stream into this file")
	cmd.Flags().BoolVar(&o.outLz4, "output-lz4", false, "lz4 frame the re-encoded stream")
	cmd.Flags().BoolVarP(&o.quiet, "quiet", "q", false, "do not print the schema and batch summary")
	return cmd
}

func run(ctx context.Context, o *rootOptions, in io.Reader, out io.Writer, lz4Set bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = queryctx.NewContextWithQueryId(ctx, "rbcat")

	cfg, err := config.FromEnv(o.envFiles...)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if cfg.LogLevel != "" {
		logger.SetLogLevel(logger.ParseLevel(cfg.LogLevel))
	}
	if lz4Set {
		cfg.UseLz4Compression = o.lz4
	}

	src, err := ipcstream.NewStream(in, ipcstream.WithConfig(cfg))
	if err != nil {
		return err
	}

	stream, err := recordbatch.TryNewStreamAdapter(ctx, src)
	if err != nil {
		if c, ok := src.(io.Closer); ok {
			_ = c.Close()
		}
		return err
	}
	defer stream.Close()

	batches, err := recordbatch.CollectBatches(ctx, stream)
	if err != nil {
		return err
	}
	defer batches.Release()

	logger.Debug().Int("batches", batches.Len()).Int64("rows", batches.NumRows()).Msg("rbcat: stream read")

	if !o.quiet {
		printSummary(out, batches)
	}

	if o.output == "" {
		return nil
	}

	f, err := os.Create(o.output)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", o.output)
	}
	defer f.Close()

	_, err = ipcstream.Write(ctx, f, recordbatch.NewEngineStreamAdapter(batches.AsStream()),
		ipcstream.WithLz4Compression(o.outLz4))
	if err != nil {
		return err
	}
	return f.Close()
}

func printSummary(w io.Writer, batches *recordbatch.RecordBatches) {
	schema := batches.Schema()
	tsIndex, hasTs := schema.TimestampIndex()

	fmt.Fprintf(w, "schema (version %d):\n", schema.Version())
	for i, col := range schema.ColumnSchemas() {
		line := fmt.Sprintf("  %s: %s", col.Name, col.DataType)
		if col.Nullable {
			line += " null"
		}
		if hasTs && i == tsIndex {
			line += " time index"
		}
		fmt.Fprintln(w, line)
	}

	for i, b := range batches.Batches() {
		fmt.Fprintf(w, "batch %d: %d rows\n", i, b.NumRows())
	}
	fmt.Fprintf(w, "total: %d batches, %d rows\n", batches.Len(), batches.NumRows())
}
