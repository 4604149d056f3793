package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/Additional-Code/vendordesk/internal/app"
	vendorsvc "github.com/Additional-Code/vendordesk/internal/service/vendor"
	"github.com/Additional-Code/vendordesk/internal/upstream"
)

func withVendors(cmd *cobra.Command, fn func(ctx context.Context, svc *vendorsvc.Service) error) error {
	var svc *vendorsvc.Service
	opts := fx.Options(app.Client, fx.Populate(&svc))
	return runWithApp(cmd.Context(), opts, func(ctx context.Context) error {
		return fn(ctx, svc)
	})
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a vendor",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = os.Getenv("VENDOR_PASSWORD")
			}
			return withVendors(cmd, func(ctx context.Context, svc *vendorsvc.Service) error {
				sess, err := svc.Login(ctx, name, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (vendor %s)\n", sess.VendorName, sess.VendorID)
				return nil
			})
		},
	}
	cmd.Flags().String("name", "", "Shop name")
	cmd.Flags().String("password", "", "Password (defaults to $VENDOR_PASSWORD)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVendors(cmd, func(ctx context.Context, svc *vendorsvc.Service) error {
				if err := svc.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in vendor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVendors(cmd, func(ctx context.Context, svc *vendorsvc.Service) error {
				id, err := svc.Whoami(ctx)
				if err != nil {
					return err
				}
				name := id.VendorName
				if name == "" {
					name = "vendor " + id.VendorID
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s, %s\n", id.Greeting, name)
				return nil
			})
		},
	}
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change the shop profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the shop profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withVendors(cmd, func(ctx context.Context, svc *vendorsvc.Service) error {
				vendor, err := svc.Profile(ctx)
				if err != nil {
					return err
				}
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintf(tw, "Name\t%s\n", vendor.Name)
				fmt.Fprintf(tw, "Owner\t%s\n", vendor.OwnerName)
				fmt.Fprintf(tw, "College\t%s\n", vendor.CollegeID)
				fmt.Fprintf(tw, "Location\t%.5f, %.5f\n", vendor.Geolocation.Lat, vendor.Geolocation.Lng)
				return tw.Flush()
			})
		},
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields; omitted flags are left unchanged",
		RunE: func(cmd *cobra.Command, args []string) error {
			var u upstream.VendorUpdate
			u.Name, _ = cmd.Flags().GetString("name")
			u.OwnerName, _ = cmd.Flags().GetString("owner")
			u.CollegeID, _ = cmd.Flags().GetString("college")
			u.Password, _ = cmd.Flags().GetString("password")
			return withVendors(cmd, func(ctx context.Context, svc *vendorsvc.Service) error {
				if err := svc.UpdateProfile(ctx, u); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Profile updated successfully")
				return nil
			})
		},
	}
	update.Flags().String("name", "", "Shop name")
	update.Flags().String("owner", "", "Owner name")
	update.Flags().String("college", "", "College id")
	update.Flags().String("password", "", "New password")

	cmd.AddCommand(show, update)
	return cmd
}

func newMenuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Manage menu items",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a dish to the menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			var item upstream.NewMenuItem
			item.Name, _ = cmd.Flags().GetString("name")
			item.Description, _ = cmd.Flags().GetString("description")
			item.Category, _ = cmd.Flags().GetString("category")
			unavailable, _ := cmd.Flags().GetBool("unavailable")
			item.IsAvailable = !unavailable

			rawPrice, _ := cmd.Flags().GetString("price")
			price, err := decimal.NewFromString(rawPrice)
			if err != nil {
				return fmt.Errorf("invalid price %q", rawPrice)
			}
			item.Price = price

			if path, _ := cmd.Flags().GetString("image"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				item.Image = data
				item.ImageName = filepath.Base(path)
			}

			return withVendors(cmd, func(ctx context.Context, svc *vendorsvc.Service) error {
				if err := svc.AddMenuItem(ctx, item); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), upstream.MenuItemAdded)
				return nil
			})
		},
	}
	add.Flags().String("name", "", "Dish name")
	add.Flags().String("description", "", "Description")
	add.Flags().String("category", "", "Category")
	add.Flags().String("price", "", "Price")
	add.Flags().String("image", "", "Path to an image file")
	add.Flags().Bool("unavailable", false, "Add the dish as not available")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("price")

	cmd.AddCommand(add)
	return cmd
}

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Manage push notifications",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "register [token]",
		Short: "Subscribe a device token to order notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return errors.New("token must not be empty")
			}
			return withVendors(cmd, func(ctx context.Context, svc *vendorsvc.Service) error {
				if err := svc.RegisterPushToken(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Push notifications enabled")
				return nil
			})
		},
	})
	return cmd
}
