// Package platforms lists the components compiled into this build.
package platforms

import (
	"github.com/nerrad567/gray-logic-irclimate/internal/climateir"
	"github.com/nerrad567/gray-logic-irclimate/internal/component"
	"github.com/nerrad567/gray-logic-irclimate/internal/mbishi"
	"github.com/nerrad567/gray-logic-irclimate/internal/remote"
)

// All returns every platform known to the build.
func All() []component.Platform {
	out := remote.Platforms()
	out = append(out,
		climateir.ClimatePlatform(),
		climateir.Platform(),
		mbishi.Platform(),
	)
	return out
}

// Catalog builds the catalogue of All.
func Catalog() (*component.Catalog, error) {
	return component.NewCatalog(All()...)
}

// Factories maps generated class names to runtime unit constructors.
func Factories() map[string]climateir.Factory {
	return map[string]climateir.Factory{
		mbishi.Class.FullName(): mbishi.New,
	}
}
