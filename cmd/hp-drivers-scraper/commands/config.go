package commands

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/rgl/hp-drivers-scraper/internal/catalog"
)

// loadProducts returns the products of the "products" config key, or the
// built-in catalog when the key is absent.
func loadProducts(v *viper.Viper) ([]catalog.Product, error) {
	products := catalog.Default()
	if v.IsSet("products") {
		products = nil
		if err := v.UnmarshalKey("products", &products); err != nil {
			return nil, fmt.Errorf("decode products: %w", err)
		}
	}
	if err := catalog.Validate(products); err != nil {
		return nil, fmt.Errorf("invalid products: %w", err)
	}
	return products, nil
}
