package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rgl/hp-drivers-scraper/internal/catalog"
	"github.com/rgl/hp-drivers-scraper/internal/output"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the configured products",
	Long: `List the products scraped by the scrape command: the built-in catalog,
or the "products" list of the config file, e.g.

  products:
    - slug: hp-elitedesk-800-35w-g2-desktop-mini-pc
      url: https://support.hp.com/us-en/drivers/selfservice/hp-elitedesk-800-35w-g2-desktop-mini-pc/7633266`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		products, err := loadProducts(viper.GetViper())
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("output")
		return writeProducts(cmd.OutOrStdout(), products, format)
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.Flags().StringP("output", "o", "text", "output format: text, json, yaml")
}

func writeProducts(w io.Writer, products []catalog.Product, format string) error {
	if format == "" || format == "text" {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SLUG\tURL")
		for _, p := range products {
			fmt.Fprintf(tw, "%s\t%s\n", p.Slug, p.URL)
		}
		return tw.Flush()
	}

	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	ow, err := output.NewWriter(w, f, output.WithIndent("  "))
	if err != nil {
		return err
	}
	if f == output.FormatJSONL {
		for _, p := range products {
			if err := ow.Write(p); err != nil {
				return err
			}
		}
	} else if err := ow.Write(products); err != nil {
		return err
	}
	return ow.Close()
}
