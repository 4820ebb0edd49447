package catalog

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

//go:embed datasets.yaml
var embeddedTable []byte

type loadOptions struct {
	path      string
	strict    bool
	tolerance float64
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithPath loads the table from a YAML file instead of the embedded one.
// An empty path keeps the embedded table.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithStrictConsistency makes Load fail with ErrInconsistent when any dataset's
// authored mean, median or sd differs from the bin-derived value by more than
// tolerance.
func WithStrictConsistency(tolerance float64) LoadOption {
	return func(o *loadOptions) {
		o.strict = true
		o.tolerance = tolerance
	}
}

type table struct {
	Datasets []Dataset `koanf:"datasets"`
}

// Load reads, validates and returns the dataset registry.
func Load(_ context.Context, opts ...LoadOption) (*Catalog, error) {
	o := loadOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")
	var err error
	if o.path != "" {
		err = k.Load(file.Provider(o.path), yaml.Parser())
	} else {
		err = k.Load(rawbytes.Provider(embeddedTable), yaml.Parser())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadCatalog, err)
	}

	var t table
	if err := k.UnmarshalWithConf("", &t, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadCatalog, err)
	}

	c, err := New(t.Datasets)
	if err != nil {
		return nil, err
	}

	if o.strict {
		for _, report := range c.Consistency(o.tolerance) {
			if !report.Consistent {
				return nil, fmt.Errorf("%w: %s", ErrInconsistent, report.Summary())
			}
		}
	}
	return c, nil
}

// Default returns the embedded registry. The embedded table is part of the
// binary, so failing to load it is a programming error and panics.
func Default() *Catalog {
	c, err := Load(context.Background())
	if err != nil {
		panic(fmt.Sprintf("embedded dataset table is invalid: %v", err))
	}
	return c
}
