package main

import (
	"flag"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const configFileOption = "config.file"

func main() {
	root := &cobra.Command{
		Use:   "styx",
		Short: "Bulk fetch Open Food Facts product images.",
		Long: `styx reads rows of the Open Food Facts datasets, resolves the image of
every row and downloads it with bounded concurrency. Images already on disk
are never fetched again, so an interrupted run can simply be restarted.

Every option can be set in a yaml file passed with --config.file. Options
given on the command line take precedence over the file.`,
		SilenceUsage: true,
	}

	root.AddCommand(newFetchCmd(os.Args[1:]), newResolveCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// parseConfigFileParameter finds the config file option in args before the
// command line is parsed for real, so the file can be loaded underneath the
// flags.
func parseConfigFileParameter(args []string) string {
	var configFile string

	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&configFile, configFileOption, "", "")

	for len(args) > 0 {
		_ = fs.Parse(args)
		args = args[1:]
	}

	return configFile
}
