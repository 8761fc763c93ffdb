package assemble

import "github.com/kailas-cloud/sommelier/internal/domain/catalog"

// CatalogProvider returns the catalog in effect for the current request.
type CatalogProvider interface {
	Catalog() *catalog.Catalog
}
