package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"storefront-client/internal/domain"
)

func ordersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Consulter l'historique des commandes",
	}
	cmd.AddCommand(ordersListCommand(), ordersShowCommand(), ordersCancelCommand(), ordersExportCommand())
	return cmd
}

func printOrder(o domain.Order) {
	fmt.Printf("commande %s (%d) du %s — %s\n", o.Numero, o.ID, o.Date.Format("02/01/2006"), o.Status)
	for _, l := range o.Lines {
		fmt.Printf("  %-8s %-30s %7.2f € x %d\n", l.ProductRef, l.ProductName, l.UnitPriceTTC, l.Quantity)
	}
	fmt.Printf("  livraison: %s, %s %s\n", o.DeliveryAddress.Street, o.DeliveryAddress.PostalCode, o.DeliveryAddress.City)
	if o.Carrier != nil {
		fmt.Printf("  livreur: %s (%.2f €, %d jours)\n", o.Carrier.Name, o.Carrier.Price, o.Carrier.DelayDays)
	}
	fmt.Printf("  HT %.2f €   TVA %.2f €   TTC %.2f €\n", o.Totals.HT, o.Totals.TVA, o.Totals.TTC)
}

func ordersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lister les commandes",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			orders, err := a.orderSvc.List(ctx, 0)
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				fmt.Println("aucune commande")
				return nil
			}
			for _, o := range orders {
				fmt.Printf("%4d  %-10s %s  %-14s %8.2f €\n", o.ID, o.Numero, o.Date.Format("02/01/2006"), o.Status, o.Totals.TTC)
			}
			return nil
		}),
	}
}

func ordersShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <commandeId>",
		Short: "Détailler une commande",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			orderID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("identifiant de commande invalide: %s", args[0])
			}
			o, err := a.orderSvc.Get(ctx, 0, orderID)
			if err != nil {
				return err
			}
			printOrder(*o)
			return nil
		}),
	}
}

func ordersCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <commandeId>",
		Short: "Annuler une commande en attente ou confirmée",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			orderID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("identifiant de commande invalide: %s", args[0])
			}
			o, err := a.orderSvc.Cancel(ctx, 0, orderID)
			if err != nil {
				return err
			}
			fmt.Printf("commande %s annulée\n", o.Numero)
			return nil
		}),
	}
}

func ordersExportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Exporter l'historique en CSV",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			orders, err := a.orderSvc.List(ctx, 0)
			if err != nil {
				return err
			}

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				out = f
			}

			w := csv.NewWriter(out)
			if err := w.Write([]string{"numero", "date", "statut", "total_ht", "total_tva", "total_ttc", "livreur"}); err != nil {
				return err
			}
			for _, o := range orders {
				carrier := ""
				if o.Carrier != nil {
					carrier = o.Carrier.Name
				}
				record := []string{
					o.Numero,
					o.Date.Format("2006-01-02"),
					string(o.Status),
					strconv.FormatFloat(o.Totals.HT, 'f', 2, 64),
					strconv.FormatFloat(o.Totals.TVA, 'f', 2, 64),
					strconv.FormatFloat(o.Totals.TTC, 'f', 2, 64),
					carrier,
				}
				if err := w.Write(record); err != nil {
					return err
				}
			}
			w.Flush()
			return w.Error()
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "fichier de destination (stdout par défaut)")
	return cmd
}
