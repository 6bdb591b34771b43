// Package locator turns dataset records into fetchable image URLs.
//
// Two variants exist: Packaging builds the URL from the sharded barcode path
// and the selected image descriptor, Direct takes the URL embedded in the
// record. Both satisfy Locator so the batch runner does not care which one
// it is given.
package locator

import (
	"flag"
	"fmt"

	"github.com/ValerySidorin/styx/pkg/record"
	"github.com/pkg/errors"
)

const (
	DefaultBaseURL   = "https://images.openfoodfacts.org/images/products"
	DefaultExtension = "jpg"
)

type Config struct {
	BaseURL          string `yaml:"base_url"`
	Extension        string `yaml:"extension"`
	DefaultExtension string `yaml:"default_extension"`
}

func (c *Config) RegisterFlags(flagPrefix string, f *flag.FlagSet) {
	f.StringVar(&c.BaseURL, flagPrefix+"base-url", DefaultBaseURL, `Base URL of the sharded product image store.`)
	f.StringVar(&c.Extension, flagPrefix+"extension", DefaultExtension, `Extension of packaging images.`)
	f.StringVar(&c.DefaultExtension, flagPrefix+"default-extension", DefaultExtension, `Extension used when a direct URL has none.`)
}

// Asset is a fetchable image of one record.
type Asset struct {
	ID  string
	URL string
	Ext string
}

// FileName is the local file name of the asset, <id>.<ext>.
func (a Asset) FileName() string {
	return a.ID + "." + a.Ext
}

type Locator interface {
	// Locate reports false when the record has no usable asset.
	Locate(rec record.Record) (Asset, bool)
}

func New(class string, cfg Config) (Locator, error) {
	switch class {
	case record.ClassPackaging:
		return NewPackaging(cfg.BaseURL, cfg.Extension), nil
	case record.ClassNutrition:
		return NewDirect(cfg.DefaultExtension), nil
	}

	return nil, errors.New(fmt.Sprintf("no locator for record class: %q", class))
}
