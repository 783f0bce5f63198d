package cli

import (
	"fmt"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/cart"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/checkout"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
)

func productsCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			ctx, cancel := a.call(cmd.Context())
			defer cancel()

			products, err := a.API.ListProducts(ctx)
			if err != nil {
				return hint(err)
			}
			return renderProducts(a.Out, products)
		},
	}
}

func cartCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a := app()
			return renderCart(a.Out, a.Cart.Lines())
		},
	}

	add := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx, cancel := a.call(cmd.Context())
			defer cancel()

			p, err := a.API.GetProduct(ctx, args[0])
			if err != nil {
				return hint(err)
			}
			if err := a.Cart.Add(cmd.Context(), cart.Item{
				ProductID: p.ID,
				Name:      p.Name,
				UnitPrice: p.OfferPrice,
				ImageRef:  p.ImageURL,
			}); err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Added %s to the cart.\n", p.Name)
			if a.Cart.IsOpen() {
				return renderCart(a.Out, a.Cart.Lines())
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set PRODUCT_ID QUANTITY",
		Short: "Set the quantity of a cart line; values below 1 become 1",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Errorf("quantity %q is not a number", args[1])
			}
			if err := a.Cart.UpdateQuantity(cmd.Context(), args[0], qty); err != nil {
				return err
			}
			return renderCart(a.Out, a.Cart.Lines())
		},
	}

	remove := &cobra.Command{
		Use:     "remove PRODUCT_ID",
		Aliases: []string{"rm"},
		Short:   "Remove a line from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.Cart.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			return renderCart(a.Out, a.Cart.Lines())
		},
	}

	empty := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if err := a.Cart.Clear(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(a.Out, "Cart cleared.")
			return err
		},
	}

	cmd.AddCommand(add, set, remove, empty)
	return cmd
}

func checkoutCommand(app func() *App) *cobra.Command {
	var (
		form checkout.Form
		zone string
		yes  bool
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if a.Cart.Len() == 0 {
				return checkout.ErrEmptyCart
			}
			z, err := order.ParseShippingZone(zone)
			if err != nil {
				return err
			}
			form.ShippingZone = z

			co := checkout.New(a.Cart, a.API, checkout.Options{
				Fees:    a.Fees,
				Timeout: a.Timeout,
				Logger:  a.Logger,
			})
			q, err := co.Quote(z)
			if err != nil {
				return err
			}
			if err := renderCart(a.Out, a.Cart.Lines()); err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "Shipping (%s): %s\nTotal: %s\n", z, money(q.ShippingFee), money(q.Total))

			for _, f := range []struct {
				v     *string
				label string
			}{
				{&form.CustomerName, "Name"},
				{&form.Phone, "Phone"},
				{&form.Address, "Address"},
			} {
				if err := a.askIfEmpty(f.v, f.label); err != nil {
					return err
				}
			}
			if !yes {
				ok, err := a.Confirm(cmd.Context(), "Place this order?")
				if err != nil {
					return err
				}
				if !ok {
					_, err := fmt.Fprintln(a.Out, "Checkout aborted.")
					return err
				}
			}

			placed, err := co.Submit(cmd.Context(), &form)
			if err != nil {
				return hint(err)
			}
			a.Logger.Debug("Order placed", zap.String("order_id", placed.ID))
			fmt.Fprintln(a.Out, "Order placed successfully.")
			return renderOrder(a.Out, placed)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&form.CustomerName, "name", "", "customer name")
	fl.StringVar(&form.Phone, "phone", "", "contact phone")
	fl.StringVar(&form.Address, "address", "", "delivery address")
	fl.StringVar(&zone, "zone", string(order.ZoneInside), "shipping zone: inside or outside")
	fl.BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
