package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/taberneiros/internal/app"
	"github.com/cory-johannsen/taberneiros/internal/game/action"
	"github.com/cory-johannsen/taberneiros/internal/game/check"
	"github.com/cory-johannsen/taberneiros/internal/game/dice"
)

var (
	rollDifficulty int
	rollBonus      int
	rollFlavor     string
	rollSource     string
	rollDefense    int
)

var testCmd = &cobra.Command{
	Use:     "test ID ATRIBUTO",
	Aliases: []string{"roll"},
	Short:   "Faz um teste de atributo (2d6 + atributo + bônus)",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return printCheck(cmd.OutOrStdout(), a.System.RollTest(ctx, args[0], args[1], rollBonus, rollDifficulty, rollFlavor))
		})
	},
}

var damageCmd = &cobra.Command{
	Use:   "damage ID FORMULA",
	Short: "Rola uma fórmula de dano",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res := a.System.RollDamage(ctx, args[0], args[1], action.DamageOptions{Flavor: rollFlavor, Source: rollSource})
			return printRoll(cmd.OutOrStdout(), "Dano", res)
		})
	},
}

var spellCmd = &cobra.Command{
	Use:   "spell ID MAGIA",
	Short: "Conjura uma magia da ficha",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res := a.System.RollSpell(ctx, args[0], args[1], action.SpellOptions{Difficulty: rollDifficulty})
			return printCheck(cmd.OutOrStdout(), res)
		})
	},
}

var attackCmd = &cobra.Command{
	Use:   "attack ID ARMA",
	Short: "Ataca com uma arma equipada",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res := a.System.RollWeapon(ctx, args[0], args[1], action.AttackOptions{
				Difficulty:    rollDifficulty,
				TargetDefense: rollDefense,
			})
			if res == nil {
				return errFailed
			}
			if err := printCheck(cmd.OutOrStdout(), res.Check); err != nil {
				return err
			}
			if res.Damage != nil {
				return printRoll(cmd.OutOrStdout(), "Dano", res.Damage)
			}
			return nil
		})
	},
}

var skillCmd = &cobra.Command{
	Use:   "skill ID HABILIDADE",
	Short: "Rola um teste de habilidade",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return printCheck(cmd.OutOrStdout(), a.System.RollSkill(ctx, args[0], args[1], rollDifficulty))
		})
	},
}

var initiativeCmd = &cobra.Command{
	Use:   "initiative ID",
	Short: "Rola iniciativa (2d6 + ação)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return printRoll(cmd.OutOrStdout(), "Iniciativa", a.System.RollInitiative(ctx, args[0]))
		})
	},
}

var useCmd = &cobra.Command{
	Use:   "use ID ITEM",
	Short: "Usa um item da ficha conforme o seu tipo",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res := a.System.UseItem(ctx, args[0], args[1], action.UseOptions{
				Difficulty:    rollDifficulty,
				TargetDefense: rollDefense,
			})
			if res == nil {
				return errFailed
			}
			out := cmd.OutOrStdout()
			if res.Check != nil {
				if err := printCheck(out, res.Check); err != nil {
					return err
				}
			}
			if res.Damage != nil {
				_ = printRoll(out, "Dano", res.Damage)
			}
			if res.Recovery != nil {
				_ = printRoll(out, "Recuperação", res.Recovery)
			}
			return nil
		})
	},
}

func printCheck(w io.Writer, res *check.Result) error {
	if res == nil {
		return errFailed
	}
	fmt.Fprintf(w, "%s = %d contra ND %d: %s\n", res.Roll.String(), res.Total, res.Difficulty, res.Outcome)
	return nil
}

func printRoll(w io.Writer, label string, res *dice.Result) error {
	if res == nil {
		return errFailed
	}
	fmt.Fprintf(w, "%s: %s\n", label, res.String())
	return nil
}

func init() {
	for _, c := range []*cobra.Command{testCmd, spellCmd, attackCmd, skillCmd, useCmd} {
		c.Flags().IntVar(&rollDifficulty, "nd", 0, "nível de dificuldade (0 = padrão)")
	}
	for _, c := range []*cobra.Command{attackCmd, useCmd} {
		c.Flags().IntVar(&rollDefense, "defesa", 0, "defesa do alvo, usada quando --nd é zero")
	}
	testCmd.Flags().IntVar(&rollBonus, "bonus", 0, "bônus de habilidade")
	testCmd.Flags().StringVar(&rollFlavor, "flavor", "", "texto do cartão")
	damageCmd.Flags().StringVar(&rollFlavor, "flavor", "", "texto do cartão")
	damageCmd.Flags().StringVar(&rollSource, "fonte", "", "origem do dano")
	rootCmd.AddCommand(testCmd, damageCmd, spellCmd, attackCmd, skillCmd, initiativeCmd, useCmd)
}
