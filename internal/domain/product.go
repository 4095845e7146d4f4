package domain

import (
	"github.com/shopspring/decimal"
)

// Product represents a sneaker in the catalog
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Brand         string           `json:"brand"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Image         string           `json:"image"`
	Images        []string         `json:"images,omitempty"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	Sizes         []string         `json:"sizes"`
	Colors        []string         `json:"colors"`
	Stock         int              `json:"stock"`
	Rating        *float64         `json:"rating,omitempty"`
	Reviews       *int             `json:"reviews,omitempty"`
	Featured      bool             `json:"featured,omitempty"`
}

// CatalogSource tells callers where a catalog read was served from
type CatalogSource string

const (
	SourceStore  CatalogSource = "store"
	SourceStatic CatalogSource = "static"
)

// Catalog is a product listing together with the source that produced it
type Catalog struct {
	Products []Product     `json:"products"`
	Source   CatalogSource `json:"source"`
}
