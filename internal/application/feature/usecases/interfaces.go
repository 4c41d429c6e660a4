package usecases

import (
	"github.com/bodrix-ai/bodrix/internal/domain/feature"
)

// CatalogSource supplies the declared feature catalog.
type CatalogSource interface {
	Definitions() ([]feature.Definition, error)
}
