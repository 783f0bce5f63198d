package cli

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/myorders"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
)

func ordersCommand(app func() *App) *cobra.Command {
	var phone string
	cmd := &cobra.Command{
		Use:   "orders [PHONE]",
		Short: "List the orders placed with a phone number",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if len(args) == 1 {
				phone = args[0]
			}
			if err := a.askIfEmpty(&phone, "Phone"); err != nil {
				return err
			}
			orders, err := myorders.NewDesk(timeoutAPI{a}).Lookup(cmd.Context(), phone)
			if err != nil {
				return hint(err)
			}
			return renderOrders(a.Out, orders)
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "phone number used at checkout")
	return cmd
}

func cancelCommand(app func() *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "cancel ORDER_ID",
		Short: "Cancel a pending order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			var confirm myorders.Confirmer = myorders.ConfirmFunc(a.Confirm)
			if yes {
				confirm = myorders.AlwaysConfirm
			}

			// The prompt runs between requests; only the requests are bounded.
			desk := myorders.NewDesk(timeoutAPI{a})
			cancelled, err := desk.Cancel(cmd.Context(), args[0], confirm)
			switch {
			case errors.Is(err, myorders.ErrNotConfirmed):
				_, err := fmt.Fprintln(a.Out, "Order left unchanged.")
				return err
			case err != nil:
				return hint(err)
			}
			fmt.Fprintln(a.Out, "Order cancelled.")
			return renderOrder(a.Out, cancelled)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// timeoutAPI bounds each order request by the app timeout.
type timeoutAPI struct {
	a *App
}

func (t timeoutAPI) ListOrdersByPhone(ctx context.Context, phone string) ([]order.Order, error) {
	ctx, cancel := t.a.call(ctx)
	defer cancel()
	return t.a.API.ListOrdersByPhone(ctx, phone)
}

func (t timeoutAPI) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	ctx, cancel := t.a.call(ctx)
	defer cancel()
	return t.a.API.GetOrder(ctx, id)
}

func (t timeoutAPI) CancelOrder(ctx context.Context, id string) (*order.Order, error) {
	ctx, cancel := t.a.call(ctx)
	defer cancel()
	return t.a.API.CancelOrder(ctx, id)
}
