package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storefront-client/internal/service/auth"
)

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Client en ligne de commande de la boutique",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		loginCommand(),
		logoutCommand(),
		registerCommand(),
		catalogCommand(),
		categoriesCommand(),
		suppliersCommand(),
		cartCommand(),
		addressesCommand(),
		ordersCommand(),
		checkoutCommand(),
		themeCommand(),
	)
	return root
}

// withApp builds the app for one command run and tears it down after.
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd.Context(), a, args)
	}
}

func loginCommand() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Se connecter et mémoriser la session",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if err := a.authState.Login(ctx, args[0], password); err != nil {
				return err
			}
			user := a.authState.User()
			fmt.Printf("connecté en tant que %s (client %d)\n", user.FullName(), user.ID)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "mot de passe")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Se déconnecter",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			if err := a.authState.Load(ctx); err != nil {
				return err
			}
			a.authState.Logout(ctx)
			fmt.Println("déconnecté")
			return nil
		}),
	}
}

func registerCommand() *cobra.Command {
	var in auth.RegisterInput
	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Créer un compte",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			in.Email = args[0]
			if err := a.authSvc.Register(ctx, in); err != nil {
				return err
			}
			fmt.Println("compte créé, vous pouvez vous connecter")
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.Password, "password", "", "mot de passe")
	cmd.Flags().StringVar(&in.PasswordConfirm, "confirm", "", "confirmation du mot de passe")
	cmd.Flags().StringVar(&in.FirstName, "prenom", "", "prénom")
	cmd.Flags().StringVar(&in.LastName, "nom", "", "nom")
	cmd.Flags().StringVar(&in.Street, "rue", "", "rue")
	cmd.Flags().StringVar(&in.PostalCode, "code-postal", "", "code postal")
	cmd.Flags().StringVar(&in.City, "ville", "", "ville")
	cmd.Flags().StringVar(&in.Country, "pays", "France", "pays")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("confirm")
	return cmd
}

func catalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Lister les produits du magasin",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			products, err := a.catalogSvc.Products(ctx)
			if err != nil {
				return err
			}
			for _, p := range products {
				fmt.Printf("%3d  %-8s %-30s %7.2f €  stock %d\n", p.ID, p.Ref, p.Name, p.PriceTTC, p.Stock)
			}
			return nil
		}),
	}
}

func categoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Lister les catégories",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			categories, err := a.catalogSvc.Categories(ctx)
			if err != nil {
				return err
			}
			for _, c := range categories {
				fmt.Printf("%3d  %s\n", c.ID, c.Name)
			}
			return nil
		}),
	}
}

func suppliersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suppliers",
		Short: "Lister les fournisseurs",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			suppliers, err := a.catalogSvc.Suppliers(ctx)
			if err != nil {
				return err
			}
			for _, s := range suppliers {
				fmt.Printf("%3d  %-25s %s\n", s.ID, s.Name, s.City)
			}
			return nil
		}),
	}
}

func themeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Gérer le thème d'affichage",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Lister les palettes disponibles",
			Args:  cobra.NoArgs,
			RunE: withApp(func(_ context.Context, a *app, _ []string) error {
				current := a.themeState.Current()
				for _, t := range a.themeState.Catalog() {
					marker := " "
					if t.Name == current.Name {
						marker = "*"
					}
					fmt.Printf("%s %-8s accent %s\n", marker, t.Name, t.Colors["accent"])
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "set <nom>",
			Short: "Choisir une palette",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(_ context.Context, a *app, args []string) error {
				if err := a.themeState.Select(args[0]); err != nil {
					return err
				}
				fmt.Printf("thème %s appliqué\n", args[0])
				return nil
			}),
		},
	)
	return cmd
}
