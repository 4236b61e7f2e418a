package service

import (
	"fmt"

	"github.com/AdamBeresnev/creature-cup/internal/catalog"
	"github.com/AdamBeresnev/creature-cup/internal/store"
	"github.com/AdamBeresnev/creature-cup/internal/worldcup"
)

// catalogFilter resolves the user-facing generation and type filters
// against the static catalog tables.
type catalogFilter struct {
	generations *catalog.GenerationTable
	types       *catalog.TypeTable
}

func defaultCatalogFilter() catalogFilter {
	return catalogFilter{generations: catalog.Generations(), types: catalog.Types()}
}

func (f catalogFilter) resolve(generation, typ string) (store.ItemFilter, error) {
	var filter store.ItemFilter

	r, ok, err := f.generations.Resolve(generation)
	if err != nil {
		return filter, fmt.Errorf("%w: %v", worldcup.ErrInvalidFilter, err)
	}
	if ok {
		filter.Range = &r
	}

	if !worldcup.IsWildcard(typ) {
		filter.Type = f.types.Canonical(typ)
	}
	return filter, nil
}
