package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storefront-client/internal/domain"
)

func cartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Gérer le panier",
	}
	cmd.AddCommand(cartShowCommand(), cartAddCommand(), cartSetCommand(), cartRemoveCommand(), cartClearCommand())
	return cmd
}

func printCart(c domain.Cart) {
	if len(c.Lines) == 0 {
		fmt.Println("panier vide")
		return
	}
	for _, l := range c.Lines {
		fmt.Printf("%3d  %-8s %-30s %7.2f € x %d\n", l.ID, l.ProductRef, l.ProductName, l.UnitPriceTTC, l.Quantity)
	}
	fmt.Printf("     HT %.2f €   TVA %.2f €   TTC %.2f €\n", c.Totals.HT, c.Totals.TVA, c.Totals.TTC)
}

func cartShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Afficher le panier",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			if err := a.cartState.Reload(ctx); err != nil {
				return err
			}
			printCart(a.cartState.Current())
			return nil
		}),
	}
}

func cartAddCommand() *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "add <produitId>",
		Short: "Ajouter un produit au panier",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			productID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("identifiant produit invalide: %s", args[0])
			}
			if err := a.cartState.AddProduct(ctx, productID, quantity); err != nil {
				return err
			}
			printCart(a.cartState.Current())
			return nil
		}),
	}
	cmd.Flags().IntVarP(&quantity, "quantite", "q", 1, "quantité à ajouter")
	return cmd
}

func cartSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <ligneId> <quantite>",
		Short: "Changer la quantité d'une ligne (0 supprime la ligne)",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			lineID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("identifiant de ligne invalide: %s", args[0])
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantité invalide: %s", args[1])
			}
			if err := a.cartState.ChangeQuantity(ctx, lineID, quantity); err != nil {
				return err
			}
			printCart(a.cartState.Current())
			return nil
		}),
	}
}

func cartRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <ligneId>",
		Short: "Supprimer une ligne du panier",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			lineID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("identifiant de ligne invalide: %s", args[0])
			}
			if err := a.cartState.RemoveLine(ctx, lineID); err != nil {
				return err
			}
			printCart(a.cartState.Current())
			return nil
		}),
	}
}

func cartClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Vider le panier ligne par ligne",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			err := a.cartState.Clear(ctx)
			printCart(a.cartState.Current())
			return err
		}),
	}
}
