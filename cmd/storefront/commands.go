package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/notice"
)

func newProductsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the product catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := c.sf.LoadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			printProducts(cmd.OutOrStdout(), products)
			return nil
		},
	}
}

func newSearchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "search <text>",
		Short: "Search products by name or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := c.sf.Search(cmd.Context(), args[0])
			if result.Err != nil {
				return result.Err
			}
			printProducts(cmd.OutOrStdout(), result.Products)
			return nil
		},
	}
}

// loadCart fetches the catalog and the cart reconciled against it.
func (c *cli) loadCart(ctx context.Context) ([]domain.CartLine, error) {
	if _, err := c.sf.LoadCatalog(ctx); err != nil {
		return nil, err
	}
	return c.sf.FetchCart(ctx)
}

func newCartCmd(c *cli) *cobra.Command {
	cartCmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := c.loadCart(cmd.Context())
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), lines, c.sf.Summary())
			return nil
		},
	}

	mutations := []struct {
		use   string
		short string
		apply func(ctx context.Context, productID string) ([]domain.CartLine, error)
	}{
		{"add <product-id>", "Add one unit of a product to the cart", func(ctx context.Context, id string) ([]domain.CartLine, error) { return c.sf.AddToCart(ctx, id) }},
		{"inc <product-id>", "Increase the quantity of a cart line by one", func(ctx context.Context, id string) ([]domain.CartLine, error) { return c.sf.Increment(ctx, id) }},
		{"dec <product-id>", "Decrease the quantity of a cart line by one", func(ctx context.Context, id string) ([]domain.CartLine, error) { return c.sf.Decrement(ctx, id) }},
		{"rm <product-id>", "Remove a product from the cart", func(ctx context.Context, id string) ([]domain.CartLine, error) { return c.sf.RemoveFromCart(ctx, id) }},
	}

	for _, m := range mutations {
		m := m
		cartCmd.AddCommand(&cobra.Command{
			Use:   m.use,
			Short: m.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := c.loadCart(cmd.Context()); err != nil {
					return err
				}
				lines, err := m.apply(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printNotice(cmd.ErrOrStderr(), notice.CartUpdated)
				printCart(cmd.OutOrStdout(), lines, c.sf.Summary())
				return nil
			},
		})
	}

	return cartCmd
}

func newAddressCmd(c *cli) *cobra.Command {
	addressCmd := &cobra.Command{
		Use:   "address",
		Short: "Manage shipping addresses",
	}

	addressCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved addresses",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				addrs, err := c.sf.ListAddresses(cmd.Context())
				if err != nil {
					return err
				}
				printAddresses(cmd.OutOrStdout(), addrs)
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <address>",
			Short: "Save a new address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				book := c.sf.AddressBook()
				book.SetDraft(args[0])
				addrs, err := book.AddDraft(cmd.Context(), c.sf.Session())
				if err != nil {
					return err
				}
				printNotice(cmd.ErrOrStderr(), notice.AddressAdded)
				printAddresses(cmd.OutOrStdout(), addrs)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rm <address-id>",
			Short: "Delete a saved address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				addrs, err := c.sf.RemoveAddress(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printAddresses(cmd.OutOrStdout(), addrs)
				return nil
			},
		},
	)

	return addressCmd
}

func newCheckoutCmd(c *cli) *cobra.Command {
	var addressID string

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart, shipped to a saved address",
		Long: `Place an order for the cart, shipped to a saved address.

The order is validated locally before anything is sent. The wallet balance it
is checked against comes from STOREFRONT_WALLET_BALANCE (default 0) and is not
read from the server, so set it to the account's balance before checking out.
An address must be chosen with --address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := c.loadCart(ctx); err != nil {
				return err
			}
			if _, err := c.sf.ListAddresses(ctx); err != nil {
				return err
			}
			if addressID != "" {
				c.sf.SelectAddress(addressID)
			}

			result, err := c.sf.PlaceOrder(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printNotice(cmd.ErrOrStderr(), notice.OrderPlaced)
			fmt.Fprintf(out, "Shipping to: %s\n", result.AddressID)
			printSummary(out, result.Summary)
			fmt.Fprintf(out, "Wallet balance: %.2f\n", c.sf.Session().WalletBalance)
			return nil
		},
	}

	cmd.Flags().StringVarP(&addressID, "address", "a", "", "ID of the saved address to ship to")
	return cmd
}
