package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storefront-client/internal/domain"
)

func addressesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addresses",
		Short: "Gérer le carnet d'adresses",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Lister les adresses",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			for _, addr := range a.authState.User().Addresses {
				fmt.Printf("%3d  %s, %s %s, %s\n", addr.ID, addr.Street, addr.PostalCode, addr.City, addr.Country)
			}
			return nil
		}),
	}

	var addr domain.Address
	add := &cobra.Command{
		Use:   "add",
		Short: "Ajouter une adresse",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			created, err := a.accountSvc.CreateAddress(ctx, 0, addr)
			if err != nil {
				return err
			}
			fmt.Printf("adresse %d enregistrée\n", created.ID)
			return nil
		}),
	}
	add.Flags().StringVar(&addr.Street, "rue", "", "rue")
	add.Flags().StringVar(&addr.PostalCode, "code-postal", "", "code postal")
	add.Flags().StringVar(&addr.City, "ville", "", "ville")
	add.Flags().StringVar(&addr.Country, "pays", "France", "pays")
	_ = add.MarkFlagRequired("rue")
	_ = add.MarkFlagRequired("ville")

	remove := &cobra.Command{
		Use:   "rm <adresseId>",
		Short: "Supprimer une adresse",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if err := a.requireAuth(ctx); err != nil {
				return err
			}
			addressID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("identifiant invalide: %s", args[0])
			}
			return a.accountSvc.DeleteAddress(ctx, 0, addressID)
		}),
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}
