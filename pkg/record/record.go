package record

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	ClassPackaging = "packaging"
	ClassNutrition = "nutrition"
)

// Subdir returns the output subdirectory owned by an asset class.
func Subdir(class string) (string, error) {
	switch class {
	case ClassPackaging:
		return "packaging", nil
	case ClassNutrition:
		return "nutrition_labels", nil
	}

	return "", errors.New(fmt.Sprintf("unknown record class: %q", class))
}

// Descriptor identifies one candidate image attached to a record.
type Descriptor struct {
	Key     string `json:"key"`
	URL     string `json:"url,omitempty"`
	ImageID string `json:"imgid,omitempty"`
}

type HasIdentifier interface {
	Identifier() string
}

// HasAssetReference is implemented by records that carry an ordered list of
// image descriptors resolved against the sharded image store.
type HasAssetReference interface {
	Descriptors() []Descriptor
}

// HasDirectURL is implemented by records that embed the image URL.
type HasDirectURL interface {
	AssetURL() string
}

type HasTags interface {
	Tags() []string
}

// Record is one dataset row. Everything beyond the identifier is exposed
// through the optional capability interfaces above.
type Record interface {
	HasIdentifier
}

// Product is a row of the product database.
type Product struct {
	Code          string       `json:"code"`
	Images        []Descriptor `json:"images"`
	CountriesTags []string     `json:"countries_tags"`
}

func (p *Product) Identifier() string        { return p.Code }
func (p *Product) Descriptors() []Descriptor { return p.Images }
func (p *Product) Tags() []string            { return p.CountriesTags }

// NutritionLabel is a row of the nutrition table detection dataset.
type NutritionLabel struct {
	ImageID string        `json:"image_id"`
	Meta    NutritionMeta `json:"meta"`
}

type NutritionMeta struct {
	Barcode  string `json:"barcode"`
	ImageURL string `json:"image_url"`
}

func (n *NutritionLabel) Identifier() string { return n.ImageID }
func (n *NutritionLabel) AssetURL() string   { return n.Meta.ImageURL }

// New returns an empty record of the given class, ready to be decoded into.
func New(class string) (Record, error) {
	switch class {
	case ClassPackaging:
		return &Product{}, nil
	case ClassNutrition:
		return &NutritionLabel{}, nil
	}

	return nil, errors.New(fmt.Sprintf("unknown record class: %q", class))
}
