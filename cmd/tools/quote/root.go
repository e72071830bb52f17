package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/backend-headunit/internal/app"
	"github.com/noah-isme/backend-headunit/internal/catalog"
	"github.com/noah-isme/backend-headunit/internal/money"
	"github.com/noah-isme/backend-headunit/internal/pricing"
)

type cartFile struct {
	Items    []pricing.Line `json:"items"`
	Postcode string         `json:"postcode"`
	Currency string         `json:"currency"`
}

type options struct {
	rulesFile   string
	catalogFile string
	postcode    string
	currency    string
	output      string
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "quote [cart.json|-]",
		Short: "Price a head-unit cart offline",
		Long: `quote reads a cart document ({"items":[{"catalogId":0,"options":{...}}],
"postcode":"4000","currency":"AUD"}) and prints the order summary.

Example:
  quote cart.json --postcode 4217 --currency USD
  cat cart.json | quote - --output json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return run(cmd, path, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.rulesFile, "rules", os.Getenv("RULES_FILE"), "rule tables YAML (defaults to the embedded rules)")
	flags.StringVar(&opts.catalogFile, "catalog", os.Getenv("CATALOG_FILE"), "catalog YAML (defaults to the embedded catalog)")
	flags.StringVar(&opts.postcode, "postcode", "", "override the cart postcode")
	flags.StringVar(&opts.currency, "currency", "", "override the display currency")
	flags.StringVarP(&opts.output, "output", "o", "text", "output format: text or json")
	return cmd
}

func run(cmd *cobra.Command, path string, opts options) error {
	doc, err := readCart(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	deps, err := app.NewPricing(cmd.Context(), opts.rulesFile, catalog.FileSource{Path: opts.catalogFile})
	if err != nil {
		return err
	}

	pc := pricing.Context{Postcode: doc.Postcode, Currency: doc.Currency}
	if pc.Postcode == "" {
		for _, line := range doc.Items {
			if line.Options.Postcode != "" {
				pc.Postcode = line.Options.Postcode
			}
		}
	}
	if opts.postcode != "" {
		pc.Postcode = opts.postcode
	}
	if opts.currency != "" {
		pc.Currency = opts.currency
	}
	summary := deps.Engine.PriceOrder(doc.Items, pc)

	switch strings.ToLower(opts.output) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case "text", "":
		return printText(cmd.OutOrStdout(), summary)
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}
}

func readCart(stdin io.Reader, path string) (cartFile, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return cartFile{}, fmt.Errorf("open cart: %w", err)
		}
		defer f.Close()
		r = f
	}
	var doc cartFile
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return cartFile{}, fmt.Errorf("decode cart: %w", err)
	}
	return doc, nil
}

func printText(w io.Writer, s pricing.OrderSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	where := string(s.Zone)
	if s.Local {
		where += " (local: " + s.Area + ")"
	}
	fmt.Fprintf(tw, "Postcode\t%s\t\n", s.Postcode)
	fmt.Fprintf(tw, "Zone\t%s\t\n", where)
	fmt.Fprintf(tw, "Items\t%d\t\n", s.ItemCount)
	for _, row := range []struct {
		label  string
		amount money.Money
	}{
		{"Subtotal", s.Display.Subtotal},
		{"Add-ons", s.Display.AddOns},
		{"Installation", s.Display.Installation},
		{"Callout", s.Display.Callout},
		{"Shipping", s.Display.Shipping},
		{"Total", s.Display.Grand},
	} {
		fmt.Fprintf(tw, "%s\t%s %s\t\n", row.label, s.Currency, money.Format(row.amount))
	}
	return tw.Flush()
}
