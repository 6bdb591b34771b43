package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/ValerySidorin/styx/pkg/locator"
	"github.com/ValerySidorin/styx/pkg/record"
	"github.com/ValerySidorin/styx/pkg/selector"
	"github.com/ValerySidorin/styx/pkg/shard"
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	cfg := locator.Config{}

	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	cfg.RegisterFlags("", fs)

	cmd := &cobra.Command{
		Use:   "resolve <code> [image keys...]",
		Short: "Print where the image of a product would be fetched from, without fetching it.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			writeResolution(cmd.OutOrStdout(), cfg, args[0], args[1:])
			return nil
		},
	}
	cmd.Flags().AddGoFlagSet(fs)

	return cmd
}

func writeResolution(w io.Writer, cfg locator.Config, code string, keys []string) {
	p := &record.Product{Code: code, Images: make([]record.Descriptor, 0, len(keys))}
	for _, k := range keys {
		p.Images = append(p.Images, record.Descriptor{Key: k})
	}

	fmt.Fprintf(w, "shard path: %s\n", shard.Resolve(code))

	asset, ok := locator.NewPackaging(cfg.BaseURL, cfg.Extension).Locate(p)
	if !ok {
		fmt.Fprintln(w, "no image available")
		return
	}

	d, _ := selector.Select(p.Images)
	fmt.Fprintf(w, "selected key: %s\n", d.Key)
	fmt.Fprintf(w, "url: %s\n", asset.URL)
	fmt.Fprintf(w, "file: %s\n", asset.FileName())
}
