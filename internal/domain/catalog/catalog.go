package catalog

import (
	"fmt"
	"strings"
)

// Catalog is an ordered, read-only dataset registry.
type Catalog struct {
	order []string
	byID  map[string]Dataset
}

// New validates datasets and builds a Catalog preserving their order.
//
// Rules: at least one dataset; unique non-empty ids; exactly the fixed score
// ranges in order; no negative counts; a positive total and a positive
// tallest bin (they are the chart's denominators); one shared authored mean.
func New(datasets []Dataset) (*Catalog, error) {
	if len(datasets) == 0 {
		return nil, fmt.Errorf("%w: no datasets", ErrInvalidCatalog)
	}

	c := &Catalog{
		order: make([]string, 0, len(datasets)),
		byID:  make(map[string]Dataset, len(datasets)),
	}
	for i, ds := range datasets {
		if err := validate(ds); err != nil {
			return nil, fmt.Errorf("%w: dataset #%d: %v", ErrInvalidCatalog, i, err)
		}
		if _, dup := c.byID[ds.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, ds.ID)
		}
		if ds.Mean != datasets[0].Mean {
			return nil, fmt.Errorf("%w: dataset %q has mean %v, expected the shared mean %v",
				ErrInvalidCatalog, ds.ID, ds.Mean, datasets[0].Mean)
		}
		c.order = append(c.order, ds.ID)
		c.byID[ds.ID] = ds.clone()
	}
	return c, nil
}

func validate(ds Dataset) error {
	if strings.TrimSpace(ds.ID) == "" {
		return fmt.Errorf("missing id")
	}
	if len(ds.Bins) != len(ScoreRanges) {
		return fmt.Errorf("%q has %d bins, want %d", ds.ID, len(ds.Bins), len(ScoreRanges))
	}
	for i, b := range ds.Bins {
		if b.Range != ScoreRanges[i] {
			return fmt.Errorf("%q bin %d has range %q, want %q", ds.ID, i, b.Range, ScoreRanges[i])
		}
		if b.Count < 0 {
			return fmt.Errorf("%q bin %q has negative count %d", ds.ID, b.Range, b.Count)
		}
	}
	if ds.Total() <= 0 || ds.MaxCount() <= 0 {
		return fmt.Errorf("%q has no students; totals and maxima must be positive", ds.ID)
	}
	return nil
}

// Lookup returns a copy of the dataset with the given id.
func (c *Catalog) Lookup(id string) (Dataset, bool) {
	ds, ok := c.byID[id]
	if !ok {
		return Dataset{}, false
	}
	return ds.clone(), true
}

// Contains reports whether id is a registry key.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// IDs returns the registry keys in order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// First returns the first registered dataset, the widget's default selection.
func (c *Catalog) First() Dataset {
	return c.byID[c.order[0]].clone()
}

// Datasets returns copies of every dataset in registry order.
func (c *Catalog) Datasets() []Dataset {
	out := make([]Dataset, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].clone())
	}
	return out
}

// Len returns the number of datasets.
func (c *Catalog) Len() int {
	return len(c.order)
}
