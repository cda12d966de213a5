package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/app"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/notice"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// cli holds the storefront built for the running command.
type cli struct {
	sf *app.Storefront
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	var quiet bool

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse the catalog, manage the cart and place orders against a commerce API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.NewWithWriter(app.ServiceName, cfg.LogLevel, cmd.ErrOrStderr())
			if quiet {
				log = logger.Discard()
			}
			sf, err := app.New(cfg, log)
			if err != nil {
				return fmt.Errorf("initialize storefront: %w", err)
			}
			c.sf = sf
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.sf == nil {
				return nil
			}
			return c.sf.Close(context.WithoutCancel(cmd.Context()))
		},
	}

	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress log output")

	root.AddCommand(
		newProductsCmd(c),
		newSearchCmd(c),
		newCartCmd(c),
		newAddressCmd(c),
		newCheckoutCmd(c),
	)
	return root
}

// execute runs root with args and reports a failure as a notice on stderr.
// It returns the process exit code.
func execute(ctx context.Context, root *cobra.Command, args []string) int {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	printNotice(root.ErrOrStderr(), notice.FromError(err))
	if apperrors.KindOf(err) == apperrors.KindInternal {
		fmt.Fprintln(root.ErrOrStderr(), err)
	}
	return 1
}

func printNotice(w io.Writer, n notice.Notice) {
	fmt.Fprintf(w, "[%s] %s\n", n.Severity, n.Message)
}

func printProducts(w io.Writer, products []domain.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tCOST\tRATING")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n", p.ID, p.Name, p.Category, p.Cost, strings.Repeat("*", p.Rating))
	}
	_ = tw.Flush()
}

func printCart(w io.Writer, lines []domain.CartLine, summary domain.OrderSummary) {
	if len(lines) == 0 {
		fmt.Fprintln(w, "Cart is empty")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tCOST")
	for _, l := range lines {
		name, cost := "(unavailable)", "-"
		if price, ok := l.Cost(); ok {
			name, cost = l.Name(), fmt.Sprintf("%.2f", price)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l.ProductID, name, l.Qty, cost)
	}
	_ = tw.Flush()
	printSummary(w, summary)
}

func printSummary(w io.Writer, s domain.OrderSummary) {
	fmt.Fprintf(w, "Products: %d\nSubtotal: %.2f\nShipping: %.2f\nTotal:    %.2f\n", s.Items, s.Subtotal, s.Shipping, s.Total)
	if len(s.Unpriced) > 0 {
		fmt.Fprintf(w, "Not priced (missing from catalog): %s\n", strings.Join(s.Unpriced, ", "))
	}
}

func printAddresses(w io.Writer, addrs []domain.Address) {
	if len(addrs) == 0 {
		fmt.Fprintln(w, "No addresses found for this account. Please add one to proceed")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tADDRESS")
	for _, a := range addrs {
		fmt.Fprintf(tw, "%s\t%s\n", a.ID, a.Text)
	}
	_ = tw.Flush()
}
