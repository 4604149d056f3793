package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Additional-Code/vendordesk/internal/app"
	"github.com/Additional-Code/vendordesk/internal/dto"
	"github.com/Additional-Code/vendordesk/internal/entity"
	"github.com/Additional-Code/vendordesk/internal/format"
	"github.com/Additional-Code/vendordesk/internal/notify"
	ordersvc "github.com/Additional-Code/vendordesk/internal/service/order"
)

func newOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List and manage the vendor's orders",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			label, _ := cmd.Flags().GetString("filter")
			var svc *ordersvc.Service
			opts := fx.Options(app.Client, fx.Populate(&svc))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				if err := svc.SetFilter(ctx, label); err != nil {
					return err
				}
				printOrders(cmd.OutOrStdout(), svc.View(), time.Now())
				return nil
			})
		},
	}
	list.Flags().String("filter", format.FilterAll, `Status filter label ("All", "Pending", "In Progress", ...)`)

	show := &cobra.Command{
		Use:   "show [order-id]",
		Short: "Show an order with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			var svc *ordersvc.Service
			opts := fx.Options(app.Client, fx.Populate(&svc))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				order, err := svc.OpenOrder(ctx, id)
				if err != nil {
					return err
				}
				printOrder(cmd.OutOrStdout(), dto.NewOrder(*order, time.Now()))
				return nil
			})
		},
	}

	cmd.AddCommand(list, show,
		newTransitionCmd("accept", "Start preparing a pending order", entity.StatusInProgress),
		newTransitionCmd("complete", "Mark an order as completed", entity.StatusCompleted),
		newTransitionCmd("cancel", "Cancel an order", entity.StatusCancelled),
	)
	return cmd
}

func newTransitionCmd(use, short string, status entity.OrderStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [order-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			var (
				svc   *ordersvc.Service
				queue *notify.Queue
			)
			opts := fx.Options(app.Client, fx.Populate(&svc, &queue))
			return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
				if err := svc.UpdateStatus(ctx, id, status); err != nil {
					return err
				}
				for _, n := range queue.List() {
					fmt.Fprintln(cmd.OutOrStdout(), n.Message)
				}
				return nil
			})
		},
	}
}

func parseOrderID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid order id %q", raw)
	}
	return id, nil
}

func printOrders(w io.Writer, view ordersvc.View, now time.Time) {
	fmt.Fprintf(w, "Filter: %s\n", view.FilterLabel)
	if len(view.Orders) == 0 {
		fmt.Fprintln(w, "No orders found")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTATUS\tORDERED\tREQUESTED\tTOTAL\tACTIONS")
	for _, o := range view.Orders {
		resp := dto.NewOrder(o, now)
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%s\t%s\n",
			resp.ID, resp.StatusLabel, resp.OrderedAgo, requested(resp), resp.TotalAmount, actionList(resp.Actions))
	}
	_ = tw.Flush()
}

func printOrder(w io.Writer, o dto.OrderResponse) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Order\t#%d\n", o.ID)
	fmt.Fprintf(tw, "Status\t%s\n", o.StatusLabel)
	fmt.Fprintf(tw, "Ordered\t%s (%s)\n", o.OrderedAt.Local().Format(time.DateTime), o.OrderedAgo)
	fmt.Fprintf(tw, "Requested\t%s\n", requested(o))
	fmt.Fprintf(tw, "Delivery fee\t%s\n", o.DeliveryFee)
	fmt.Fprintf(tw, "Total\t%s\n", o.TotalAmount)
	if actions := actionList(o.Actions); actions != "" {
		fmt.Fprintf(tw, "Actions\t%s\n", actions)
	}
	_ = tw.Flush()

	if len(o.Items) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintln(tw, "ITEM\tQTY\tAMOUNT")
	for _, item := range o.Items {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", item.Name, item.Quantity, item.TotalAmount)
	}
	_ = tw.Flush()
}

func requested(o dto.OrderResponse) string {
	if o.RequestedASAP || o.RequestedAt.IsZero() {
		return "ASAP"
	}
	return o.RequestedAt.Local().Format(time.DateTime)
}

func actionList(actions []dto.StatusAction) string {
	labels := make([]string, 0, len(actions))
	for _, a := range actions {
		labels = append(labels, a.Label)
	}
	return strings.Join(labels, ", ")
}
