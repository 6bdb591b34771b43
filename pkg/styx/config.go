package styx

import (
	"flag"
	"os"

	"github.com/ValerySidorin/styx/pkg/fetcher"
	"github.com/ValerySidorin/styx/pkg/journal"
	"github.com/ValerySidorin/styx/pkg/locator"
	"github.com/ValerySidorin/styx/pkg/objstore"
	"github.com/ValerySidorin/styx/pkg/queue"
	"github.com/ValerySidorin/styx/pkg/record"
	"github.com/ValerySidorin/styx/pkg/runner"
	"github.com/ValerySidorin/styx/pkg/source"
	util_log "github.com/ValerySidorin/styx/pkg/util/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Class     string `yaml:"class"`
	OutputDir string `yaml:"output_dir"`

	Log      util_log.Config `yaml:"log"`
	Source   source.Config   `yaml:"source"`
	Locator  locator.Config  `yaml:"locator"`
	Fetcher  fetcher.Config  `yaml:"fetcher"`
	Runner   runner.Config   `yaml:"runner"`
	Journal  journal.Config  `yaml:"journal"`
	ObjStore objstore.Config `yaml:"obj_store"`
	Queue    queue.Config    `yaml:"queue"`
}

func (c *Config) RegisterFlags(f *flag.FlagSet) {
	f.StringVar(&c.Class, "class", record.ClassPackaging, `Record class to fetch images for. Supported values are: packaging, nutrition.`)
	f.StringVar(&c.OutputDir, "output-dir", "images", `Directory images are stored in, one subdirectory per class.`)

	c.Log.RegisterFlags(f)
	c.Source.RegisterFlags("source.", f)
	c.Locator.RegisterFlags("locator.", f)
	c.Fetcher.RegisterFlags("fetcher.", f)
	c.Runner.RegisterFlags("runner.", f)
	c.Journal.RegisterFlags("journal.", f)
	c.ObjStore.RegisterFlags("obj-store.", f)
	c.Queue.RegisterFlags("queue.", f)
}

func (c *Config) Validate() error {
	if _, err := record.Subdir(c.Class); err != nil {
		return err
	}
	if c.OutputDir == "" {
		return errors.New("output directory is empty")
	}

	validators := []struct {
		name string
		fn   func() error
	}{
		{"source", c.Source.Validate},
		{"fetcher", c.Fetcher.Validate},
		{"runner", c.Runner.Validate},
		{"journal", c.Journal.Validate},
		{"obj store", c.ObjStore.Validate},
		{"queue", c.Queue.Validate},
	}
	for _, v := range validators {
		if err := v.fn(); err != nil {
			return errors.Wrap(err, "invalid "+v.name+" config")
		}
	}

	return nil
}

// LoadConfig decodes the yaml file at path over cfg. Keys missing from the
// file keep their current values.
func LoadConfig(path string, cfg *Config) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}

	if err := yaml.UnmarshalStrict(buf, cfg); err != nil {
		return errors.Wrap(err, "parse config file")
	}

	return nil
}
