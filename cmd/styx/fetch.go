package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ValerySidorin/styx/pkg/outcome"
	"github.com/ValerySidorin/styx/pkg/styx"
	util_log "github.com/ValerySidorin/styx/pkg/util/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newFetchCmd(args []string) *cobra.Command {
	cfg := styx.Config{}

	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	cfg.RegisterFlags(fs)

	var configFile, metricsFile string
	fs.StringVar(&configFile, configFileOption, "", `Configuration file to load.`)
	fs.StringVar(&metricsFile, "metrics.textfile", "", `Write run metrics to this file in the Prometheus text format.`)

	// Defaults are in place now, the file goes on top of them and the
	// command line on top of the file.
	var loadErr error
	if f := parseConfigFileParameter(args); f != "" {
		loadErr = styx.LoadConfig(f, &cfg)
	}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the images of every selected dataset row.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if loadErr != nil {
				return loadErr
			}

			util_log.InitLogger(&cfg.Log)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()

			s, err := styx.New(ctx, cfg, reg, util_log.Logger)
			util_log.CheckFatal("initializing styx", err)
			defer s.Close(context.Background())

			summary, err := s.Run(ctx)
			if err != nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), summary)

			if metricsFile != "" {
				if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
					_ = level.Warn(util_log.Logger).Log("msg", "failed to write metrics", "file", metricsFile, "err", err)
				}
			}

			return nil
		},
	}
	cmd.Flags().AddGoFlagSet(fs)

	return cmd
}

func printSummary(w io.Writer, s outcome.Summary) {
	fmt.Fprintf(w, "Successfully downloaded %d images\n", s.Downloaded)
	fmt.Fprintf(w, "Skipped %d already downloaded, %d without image\n", s.SkippedExisting, s.SkippedNoAsset)
	fmt.Fprintf(w, "Failed %d\n", s.Failed)
	fmt.Fprintf(w, "Total images processed: %d\n", s.Total)
}
