package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/taberneiros/internal/app"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/rules"
)

var createAttrs = map[character.AttributeName]*int{
	character.Fisico: new(int),
	character.Acao:   new(int),
	character.Mental: new(int),
	character.Social: new(int),
}

var createClasse string

var createCmd = &cobra.Command{
	Use:   "create NOME",
	Short: "Cria um personagem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		attrs := make(map[character.AttributeName]int)
		for name, v := range createAttrs {
			if cmd.Flags().Changed(string(name)) {
				attrs[name] = *v
			}
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			c := a.System.CreateCharacter(ctx, args[0], createClasse, attrs)
			if c == nil {
				return errFailed
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s criado com id %s\n", c.Name, c.ID)
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Mostra a ficha de um personagem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			c := a.System.Character(ctx, args[0])
			if c == nil {
				return errFailed
			}
			items, err := a.Documents.Items(ctx, c.ID)
			if err != nil {
				return err
			}
			printSheet(cmd.OutOrStdout(), c, items)
			return nil
		})
	},
}

var levelUpCmd = &cobra.Command{
	Use:   "level-up ID",
	Short: "Sobe o personagem de nível quando há XP suficiente",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if !a.System.CanLevelUp(ctx, args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), "XP insuficiente para subir de nível")
				return nil
			}
			if !a.System.LevelUp(ctx, args[0]) {
				return errFailed
			}
			return nil
		})
	},
}

var xpCmd = &cobra.Command{
	Use:   "xp NIVEL",
	Short: "Mostra o XP necessário para alcançar NIVEL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("nível inválido %q", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Nível %d: %d XP\n", level, rules.XPForLevel(level))
		return nil
	},
}

func printSheet(w io.Writer, c *character.Character, items []*character.Item) {
	fmt.Fprintf(w, "%s (%s)\n", c.Name, c.Classe)
	if c.Nivel != nil {
		fmt.Fprintf(w, "  Nível %d, XP %d/%d\n", c.Nivel.Value, c.Nivel.XP, c.Nivel.XPProximo)
	}
	for _, name := range character.AllAttributes {
		if attr := c.Attribute(name); attr != nil {
			fmt.Fprintf(w, "  %-7s %2d\n", name, attr.Value)
		}
	}
	if c.PV != nil {
		fmt.Fprintf(w, "  PV %d/%d\n", c.PV.Value, c.PV.Max)
	}
	if c.PM != nil {
		fmt.Fprintf(w, "  PM %d/%d\n", c.PM.Value, c.PM.Max)
	}
	if c.Defesa != nil {
		fmt.Fprintf(w, "  Defesa %d\n", c.Defesa.Value)
	}
	if c.Recursos != nil {
		fmt.Fprintf(w, "  Carga %g/%g\n", c.Recursos.Carga.Atual, c.Recursos.Carga.Max)
	}
	for _, it := range items {
		mark := " "
		if it.Equipado {
			mark = "*"
		}
		fmt.Fprintf(w, "  %s %-10s %-24s %s\n", mark, it.Type, it.Name, it.ID)
	}
}

func init() {
	for name, v := range createAttrs {
		createCmd.Flags().IntVar(v, string(name), 0, fmt.Sprintf("valor de %s (1-15)", name))
	}
	createCmd.Flags().StringVar(&createClasse, "classe", "", "classe do personagem")
	rootCmd.AddCommand(createCmd, showCmd, levelUpCmd, xpCmd)
}
