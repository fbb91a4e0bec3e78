package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/taberneiros/internal/app"
	"github.com/cory-johannsen/taberneiros/internal/game/catalog"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
)

var (
	restLong bool
	itemType string
)

var potionCmd = &cobra.Command{
	Use:   "potion ID POCAO",
	Short: "Bebe uma poção",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res := a.System.UsePotion(ctx, args[0], args[1])
			if res == nil {
				// Declined or failed; both were already reported.
				return nil
			}
			return printRoll(cmd.OutOrStdout(), "Recuperação", res)
		})
	},
}

var restCmd = &cobra.Command{
	Use:   "rest ID",
	Short: "Descansa (rápido por padrão)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if restLong {
				a.System.LongRest(ctx, args[0])
			} else {
				a.System.QuickRest(ctx, args[0])
			}
			return nil
		})
	},
}

var equipCmd = &cobra.Command{
	Use:   "equip ID ITEM",
	Short: "Equipa ou desequipa um item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			item := a.System.ToggleEquip(ctx, args[0], args[1])
			if item == nil {
				return errFailed
			}
			state := "desequipado"
			if item.Equipado {
				state = "equipado"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", item.Name, state)
			return nil
		})
	},
}

var addItemCmd = &cobra.Command{
	Use:   "add-item ID ENTRADA",
	Short: "Adiciona um item do catálogo à ficha",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			item := a.System.AddCatalogItem(ctx, args[0], args[1])
			if item == nil {
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s adicionado com id %s\n", item.Name, item.ID)
			return nil
		})
	},
}

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Lista o catálogo de itens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := catalog.LoadRegistry(cfg.Content.ItemsDir)
		if err != nil {
			return err
		}
		entries := reg.All()
		if itemType != "" {
			t := character.ItemType(itemType)
			if !character.ValidItemTypes[t] {
				return fmt.Errorf("tipo de item desconhecido %q", itemType)
			}
			entries = reg.ByType(t)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNOME\tTIPO\tDANO\tPESO")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%g\n", e.ID, e.Name, e.Type, e.Dano, e.Peso)
		}
		return tw.Flush()
	},
}

func init() {
	restCmd.Flags().BoolVar(&restLong, "longo", false, "descanso longo")
	itemsCmd.Flags().StringVar(&itemType, "tipo", "", "filtrar por tipo")
	rootCmd.AddCommand(potionCmd, restCmd, equipCmd, addItemCmd, itemsCmd)
}
