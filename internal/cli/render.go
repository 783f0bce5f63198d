package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/IhossainpHero/Arboom-bd/internal/client"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/cart"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/product"
)

var (
	pendingColor   = color.New(color.FgYellow)
	cancelledColor = color.New(color.FgRed)
	deliveredColor = color.New(color.FgGreen)
	warnColor      = color.New(color.FgYellow, color.Bold)
)

func money(d decimal.Decimal) string {
	return "৳" + d.StringFixed(2)
}

func statusText(s order.Status) string {
	switch s {
	case order.StatusPending:
		return pendingColor.Sprint(s)
	case order.StatusCancelled:
		return cancelledColor.Sprint(s)
	case order.StatusDelivered:
		return deliveredColor.Sprint(s)
	}
	return string(s)
}

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func renderProducts(out io.Writer, products []product.Product) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(out, "No products yet.")
		return err
	}
	tw := table(out)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tREGULAR")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, money(p.OfferPrice), money(p.RegularPrice))
	}
	return tw.Flush()
}

func renderCart(out io.Writer, lines []cart.Line) error {
	if len(lines) == 0 {
		_, err := fmt.Fprintln(out, "Your cart is empty.")
		return err
	}
	tw := table(out)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tQTY\tPRICE\tTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", l.ProductID, l.Name, l.Quantity, money(l.UnitPrice), money(l.Total()))
	}
	fmt.Fprintf(tw, "\t\t\tSubtotal\t%s\n", money(cart.Subtotal(lines)))
	return tw.Flush()
}

func renderOrders(out io.Writer, orders []order.Order) error {
	if len(orders) == 0 {
		_, err := fmt.Fprintln(out, "No orders found for this phone number.")
		return err
	}
	tw := table(out)
	fmt.Fprintln(tw, "ORDER\tPLACED\tSTATUS\tITEMS\tTOTAL")
	for _, o := range orders {
		items := 0
		for _, li := range o.LineItems {
			items += li.Quantity
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			o.ID, o.CreatedAt.Local().Format("2006-01-02 15:04"), statusText(o.Status), items, money(o.TotalPrice))
	}
	return tw.Flush()
}

func renderOrder(out io.Writer, o *order.Order) error {
	tw := table(out)
	fmt.Fprintf(tw, "Order\t%s\n", o.ID)
	fmt.Fprintf(tw, "Status\t%s\n", statusText(o.Status))
	fmt.Fprintf(tw, "Customer\t%s (%s)\n", o.CustomerName, o.Phone)
	fmt.Fprintf(tw, "Address\t%s\n", o.Address)
	fmt.Fprintf(tw, "Shipping\t%s (%s)\n", o.ShippingZone, money(o.ShippingFee))
	fmt.Fprintf(tw, "Total\t%s\n", money(o.TotalPrice))
	return tw.Flush()
}

// hint adds advice for errors the user can act on.
func hint(err error) error {
	var transient *client.TransientError
	if errors.As(err, &transient) {
		return errors.Wrap(err, "temporary failure, nothing was changed; please retry")
	}
	return err
}

func warn(out io.Writer, msg string) {
	_, _ = warnColor.Fprintln(out, "warning: "+msg)
}
