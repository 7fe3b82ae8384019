package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storefront-client/internal/domain"
)

func checkoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Dérouler le tunnel de commande en quatre étapes",
	}
	cmd.AddCommand(
		checkoutReviewCommand(),
		checkoutInfoCommand(),
		checkoutCarriersCommand(),
		checkoutSelectCommand(),
		checkoutLocateCommand(),
		checkoutStatusCommand(),
		checkoutPayCommand(),
	)
	return cmd
}

func checkoutReviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Étape 1 : vérifier le panier",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			cart, err := a.tunnel.ReviewCart(ctx)
			if err != nil {
				return err
			}
			printCart(cart)
			fmt.Println("panier validé, passez à `checkout info`")
			return nil
		}),
	}
}

func findAddress(addresses []domain.Address, id int) (*domain.Address, error) {
	for i := range addresses {
		if addresses[i].ID == id {
			return &addresses[i], nil
		}
	}
	return nil, fmt.Errorf("adresse %d introuvable dans le carnet", id)
}

func checkoutInfoCommand() *cobra.Command {
	var deliveryID, billingID int
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Étape 2 : choisir les adresses de livraison et de facturation",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			if err := a.cartState.Reload(ctx); err != nil {
				return err
			}
			addresses := a.authState.User().Addresses
			delivery, err := findAddress(addresses, deliveryID)
			if err != nil {
				return err
			}
			billing := delivery
			if billingID > 0 {
				if billing, err = findAddress(addresses, billingID); err != nil {
					return err
				}
			}
			if err := a.tunnel.SubmitInformation(ctx, delivery, billing); err != nil {
				return err
			}
			fmt.Println("brouillon de commande enregistré, passez à `checkout carriers`")
			return nil
		}),
	}
	cmd.Flags().IntVar(&deliveryID, "delivery", 0, "identifiant de l'adresse de livraison")
	cmd.Flags().IntVar(&billingID, "billing", 0, "identifiant de l'adresse de facturation (livraison par défaut)")
	_ = cmd.MarkFlagRequired("delivery")
	return cmd
}

func checkoutCarriersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "carriers",
		Short: "Étape 3 : lister les livreurs disponibles",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			carriers, err := a.tunnel.Carriers(ctx)
			if err != nil {
				return err
			}
			for _, c := range carriers {
				fmt.Printf("%3d  %-20s %6.2f €  %d jour(s)\n", c.ID, c.Name, c.Price, c.DelayDays)
			}
			return nil
		}),
	}
}

func checkoutSelectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select <livreurId>",
		Short: "Étape 3 : choisir un livreur",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			carrierID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("identifiant de livreur invalide: %s", args[0])
			}
			carriers, err := a.tunnel.Carriers(ctx)
			if err != nil {
				return err
			}
			for _, c := range carriers {
				if c.ID == carrierID {
					if err := a.tunnel.SelectCarrier(ctx, c); err != nil {
						return err
					}
					fmt.Printf("livreur %s sélectionné (%.2f €)\n", c.Name, c.Price)
					return nil
				}
			}
			return fmt.Errorf("livreur %d introuvable", carrierID)
		}),
	}
}

func checkoutLocateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "locate <lat> <lon>",
		Short: "Annoter le brouillon avec une position géocodée",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("latitude invalide: %s", args[0])
			}
			lon, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("longitude invalide: %s", args[1])
			}
			label, err := a.tunnel.RecordLocation(ctx, lat, lon)
			if err != nil {
				return err
			}
			fmt.Printf("position: %s\n", label)
			return nil
		}),
	}
}

func checkoutStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Afficher le brouillon de commande en cours",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			draft, err := a.tunnel.Draft()
			if err != nil {
				return err
			}
			fmt.Printf("client: %s (%d)\n", draft.ClientName, draft.ClientID)
			fmt.Printf("livraison: %s, %s %s\n", draft.DeliveryAddress.Street, draft.DeliveryAddress.PostalCode, draft.DeliveryAddress.City)
			fmt.Printf("facturation: %s, %s %s\n", draft.BillingAddress.Street, draft.BillingAddress.PostalCode, draft.BillingAddress.City)
			for _, l := range draft.Lines {
				fmt.Printf("  %-8s %-30s %7.2f € x %d\n", l.ProductRef, l.ProductName, l.UnitPriceTTC, l.Quantity)
			}
			if draft.GeoLabel != "" {
				fmt.Printf("position: %s\n", draft.GeoLabel)
			}
			if draft.Carrier != nil {
				fmt.Printf("livreur: %s (%.2f €)\n", draft.Carrier.Name, draft.Carrier.Price)
			} else {
				fmt.Println("livreur: aucun sélectionné")
			}
			fmt.Printf("poids: %.2f kg   total: %.2f €\n", draft.TotalWeight, draft.GrandTotal())
			return nil
		}),
	}
}

func checkoutPayCommand() *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Étape 4 : payer et créer la commande",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			order, err := a.tunnel.Pay(ctx, method)
			if err != nil {
				return err
			}
			fmt.Printf("paiement accepté, commande %s créée\n", order.Numero)
			printOrder(*order)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&method, "method", "m", "pm_card_visa", "identifiant du moyen de paiement")
	return cmd
}
