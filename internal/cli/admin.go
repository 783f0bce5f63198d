package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/product"
)

func adminCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Catalog administration",
	}
	cmd.AddCommand(loginCommand(app), addProductCommand(app), deleteProductCommand(app))
	return cmd
}

func loginCommand(app func() *App) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check admin credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			if err := a.askIfEmpty(&email, "Email"); err != nil {
				return err
			}
			password, err := a.ask("Password")
			if err != nil {
				return err
			}
			ctx, cancel := a.call(cmd.Context())
			defer cancel()

			if err := a.API.Login(ctx, email, password); err != nil {
				return hint(err)
			}
			_, err = fmt.Fprintln(a.Out, "Login successful.")
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	return cmd
}

func addProductCommand(app func() *App) *cobra.Command {
	var (
		in        product.Input
		regular   string
		offer     string
		imagePath string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a product with an image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			var err error
			if in.RegularPrice, err = decimal.NewFromString(regular); err != nil {
				return errors.Errorf("regular price %q is not a number", regular)
			}
			if in.OfferPrice, err = decimal.NewFromString(offer); err != nil {
				return errors.Errorf("offer price %q is not a number", offer)
			}
			if in.Image, err = os.ReadFile(imagePath); err != nil {
				return errors.Wrap(err, "read image")
			}
			in.ImageName = filepath.Base(imagePath)

			ctx, cancel := a.call(cmd.Context())
			defer cancel()

			p, err := a.API.CreateProduct(ctx, in)
			if err != nil {
				return hint(err)
			}
			_, err = fmt.Fprintf(a.Out, "Product %s created: %s\n", p.ID, p.ImageURL)
			return err
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&in.Name, "name", "", "product name")
	fl.StringVar(&in.Details, "details", "", "product description")
	fl.StringVar(&regular, "regular-price", "0", "regular price")
	fl.StringVar(&offer, "offer-price", "0", "offer price")
	fl.StringVar(&imagePath, "image", "", "image file")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func deleteProductCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete PRODUCT_ID",
		Short: "Delete a product and its image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx, cancel := a.call(cmd.Context())
			defer cancel()

			res, err := a.API.DeleteProduct(ctx, args[0])
			if err != nil {
				return hint(err)
			}
			fmt.Fprintf(a.Out, "Product %s deleted.\n", args[0])
			if res.Warning != "" {
				warn(a.Out, res.Warning)
			}
			return nil
		},
	}
}
