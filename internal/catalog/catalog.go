// Package catalog holds the products whose driver pages are scraped.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Product is a HP support product page. Slug names the output files.
type Product struct {
	Slug string `mapstructure:"slug" json:"slug" yaml:"slug" validate:"required,slug"`
	URL  string `mapstructure:"url" json:"url" yaml:"url" validate:"required,http_url"`
}

// ErrUnknownProduct is returned by Select for a slug not in the catalog.
var ErrUnknownProduct = errors.New("unknown product")

// Default returns the built-in products.
func Default() []Product {
	return []Product{
		{
			Slug: "hp-elitedesk-800-65w-g4-desktop-mini-pc",
			URL:  "https://support.hp.com/us-en/drivers/selfservice/hp-elitedesk-800-65w-g4-desktop-mini-pc/21353734",
		},
		{
			Slug: "hp-elitedesk-800-35w-g2-desktop-mini-pc",
			URL:  "https://support.hp.com/us-en/drivers/selfservice/hp-elitedesk-800-35w-g2-desktop-mini-pc/7633266",
		},
	}
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRe.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks that products is non-empty, that every entry is well
// formed, and that slugs are unique.
func Validate(products []Product) error {
	if len(products) == 0 {
		return errors.New("no products configured")
	}

	v := newValidator()
	seen := make(map[string]bool, len(products))
	var errs []error
	for i, p := range products {
		if err := v.Struct(p); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					errs = append(errs, fmt.Errorf("product %d (%q): %s", i, p.Slug, formatFieldError(fe)))
				}
				continue
			}
			errs = append(errs, fmt.Errorf("product %d: %w", i, err))
			continue
		}
		if seen[p.Slug] {
			errs = append(errs, fmt.Errorf("product %d: duplicate slug %q", i, p.Slug))
		}
		seen[p.Slug] = true
	}
	return errors.Join(errs...)
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "slug":
		return fmt.Sprintf("%s %q must be lowercase words separated by hyphens", field, fe.Value())
	case "http_url":
		return fmt.Sprintf("%s %q must be an absolute http(s) URL", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// Select returns the products named by slugs, in catalog order. An empty
// slugs list selects everything.
func Select(products []Product, slugs []string) ([]Product, error) {
	if len(slugs) == 0 {
		return products, nil
	}

	wanted := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		wanted[s] = true
	}

	var selected []Product
	for _, p := range products {
		if wanted[p.Slug] {
			selected = append(selected, p)
			delete(wanted, p.Slug)
		}
	}
	if len(wanted) > 0 {
		var unknown []string
		for _, s := range slugs {
			if wanted[s] {
				unknown = append(unknown, s)
				delete(wanted, s)
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, strings.Join(unknown, ", "))
	}
	return selected, nil
}
