package action_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/taberneiros/internal/chat"
	cdterr "github.com/cory-johannsen/taberneiros/internal/errors"
	"github.com/cory-johannsen/taberneiros/internal/game/action"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/check"
	"github.com/cory-johannsen/taberneiros/internal/game/dice"
	"github.com/cory-johannsen/taberneiros/internal/game/dice/dicetest"
	"github.com/cory-johannsen/taberneiros/internal/game/rules"
	"github.com/cory-johannsen/taberneiros/internal/storage"
	"github.com/cory-johannsen/taberneiros/internal/storage/memory"
)

type harness struct {
	docs     *storage.Documents
	dice     *dicetest.Queue
	rec      *chat.Recorder
	answer   *chat.StaticConfirmer
	resolver *action.Resolver
}

func newHarness(t *testing.T, settings action.Settings) *harness {
	t.Helper()
	docs := storage.NewDocuments(memory.New(), zap.NewNop())
	return newHarnessWithStore(t, docs, docs, settings)
}

func newHarnessWithStore(t *testing.T, docs *storage.Documents, store action.Store, settings action.Settings) *harness {
	t.Helper()
	logger := zap.NewNop()
	q := dicetest.NewQueue()
	roller := dice.NewLoggedRoller(q, logger)
	rec := &chat.Recorder{}
	answer := chat.StaticConfirmer(true)
	checks := check.NewResolver(roller, rec, logger)
	h := &harness{
		docs:     docs,
		dice:     q,
		rec:      rec,
		answer:   &answer,
		resolver: action.NewResolver(store, checks, roller, rec, rec, &answer, settings, logger),
	}
	h.createCharacter(t, "c1", "guerreiro")
	return h
}

// createCharacter stores Aldric with fisico 6, acao 4, mental 6, social 2:
// PV 28/28, PM 17/17, defesa 14.
func (h *harness) createCharacter(t *testing.T, id, classe string) {
	t.Helper()
	c, err := character.Build(id, "Aldric", classe, map[character.AttributeName]int{
		character.Fisico: 6, character.Acao: 4, character.Mental: 6, character.Social: 2,
	})
	require.NoError(t, err)
	rules.InitialPatch(c).Apply(c)
	rules.ComputeDerivedPatch(c, nil).Apply(c)
	require.NoError(t, h.docs.CreateCharacter(context.Background(), c))
}

func (h *harness) addItem(t *testing.T, item *character.Item) {
	t.Helper()
	if item.OwnerID == "" {
		item.OwnerID = "c1"
	}
	require.NoError(t, h.docs.CreateItem(context.Background(), item))
}

func (h *harness) set(t *testing.T, f character.Field, v int) {
	t.Helper()
	var p character.Patch
	p.SetInt(f, v)
	_, err := h.docs.UpdateCharacter(context.Background(), "c1", p)
	require.NoError(t, err)
}

func (h *harness) character(t *testing.T) *character.Character {
	t.Helper()
	c, err := h.docs.Character(context.Background(), "c1")
	require.NoError(t, err)
	return c
}

func (h *harness) noticeTexts() []string {
	var out []string
	for _, n := range h.rec.Notices() {
		out = append(out, n.Text)
	}
	return out
}

func missile() *character.Item {
	return &character.Item{ID: "s1", Name: "Míssil Mágico", Type: character.Magia, CustoMP: 2, Nivel: 1, Dano: "1d6+1"}
}

func sword() *character.Item {
	return &character.Item{ID: "w1", Name: "Espada Longa", Type: character.Arma, Dano: "1d6+2",
		Categoria: character.CategoriaCorpoACorpo, Equipado: true}
}

func bow(municao int) *character.Item {
	return &character.Item{ID: "w2", Name: "Arco Curto", Type: character.Arma, Dano: "1d6",
		Categoria: character.CategoriaADistancia, Municao: municao, MunicaoMax: 5, Equipado: true}
}

type failingWrites struct {
	*storage.Documents
}

func (failingWrites) UpdateCharacter(context.Context, string, character.Patch, ...storage.WriteOption) (*character.Character, error) {
	return nil, errors.New("disk full")
}

func TestCastSpell_InsufficientPMAbortsBeforeRolling(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, &character.Item{ID: "s1", Name: "Faísca", Type: character.Magia, CustoMP: 1})
	h.set(t, character.PMValue, 0)
	h.dice.Push(6, 6)

	res, err := h.resolver.CastSpell(context.Background(), "c1", "s1", action.SpellOptions{})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, cdterr.Is(err, cdterr.CodeResource))
	assert.Equal(t, "PM insuficiente! Necessário: 1, Atual: 0", err.Error())
	assert.Equal(t, 2, h.dice.Remaining())
	assert.Empty(t, h.rec.Messages())
	assert.Equal(t, 0, h.character(t).PM.Value)
}

func TestCastSpell_SuccessSpendsAndPostsCard(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, missile())
	h.dice.Push(4, 4)

	res, err := h.resolver.CastSpell(context.Background(), "c1", "s1", action.SpellOptions{})
	require.NoError(t, err)
	assert.Equal(t, check.Success, res.Outcome)
	assert.Equal(t, 9, res.Difficulty)
	assert.Equal(t, 14, res.Total)
	assert.Equal(t, 15, h.character(t).PM.Value)

	msgs := h.rec.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Conjuração de Míssil Mágico", msgs[0].Flavor)
	spell := msgs[1].Card
	assert.Equal(t, "spell", spell.Kind)
	assert.Equal(t, "Sem descrição", spell.Description)
	assert.Contains(t, spell.Fields, chat.Field{Label: "Escola", Value: "Evocação"})
	assert.Contains(t, spell.Fields, chat.Field{Label: "Alcance", Value: "Toque"})
	assert.Contains(t, spell.Fields, chat.Field{Label: "Dano", Value: "1d6+1"})
	assert.Contains(t, h.noticeTexts(), "2 PM gastos. PM restante: 15")
}

func TestCastSpell_FailureKeepsPMWhenSpendingOnlyOnSuccess(t *testing.T) {
	h := newHarness(t, action.Settings{SpendPMAlways: false})
	h.addItem(t, missile())
	h.dice.Push(3, 4)

	res, err := h.resolver.CastSpell(context.Background(), "c1", "s1", action.SpellOptions{Difficulty: 20})
	require.NoError(t, err)
	assert.Equal(t, check.Failure, res.Outcome)
	assert.Equal(t, 17, h.character(t).PM.Value)
	assert.Len(t, h.rec.Messages(), 2, "spell card is posted regardless of spend")
}

func TestCastSpell_FailureSpendsByDefault(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, missile())
	h.dice.Push(3, 4)

	_, err := h.resolver.CastSpell(context.Background(), "c1", "s1", action.SpellOptions{Difficulty: 20})
	require.NoError(t, err)
	assert.Equal(t, 15, h.character(t).PM.Value)
}

func TestCastSpell_CriticalSuccessNotifiesAndRunsScript(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, missile())
	h.dice.Push(6, 6)
	var scripted int
	h.resolver.Scripts.OnCriticalSuccess = func(context.Context, *character.Character, check.Result) error {
		scripted++
		return nil
	}

	res, err := h.resolver.CastSpell(context.Background(), "c1", "s1", action.SpellOptions{})
	require.NoError(t, err)
	assert.Equal(t, check.CriticalSuccess, res.Outcome)
	assert.Equal(t, 1, scripted)
	assert.Contains(t, h.noticeTexts(), "Conjuração crítica! Efeito potencializado!")
}

func TestCastSpell_SpendsFromPoolAsOfAfterTheRoll(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, missile())
	h.set(t, character.PMValue, 4)
	h.dice.Push(6, 6)
	h.resolver.Scripts.OnCriticalSuccess = func(ctx context.Context, actor *character.Character, _ check.Result) error {
		var p character.Patch
		p.SetInt(character.PMValue, 15)
		_, err := h.docs.UpdateCharacter(ctx, actor.ID, p)
		return err
	}

	res, err := h.resolver.CastSpell(context.Background(), "c1", "s1", action.SpellOptions{})
	require.NoError(t, err)
	assert.Equal(t, check.CriticalSuccess, res.Outcome)
	assert.Equal(t, 13, h.character(t).PM.Value)
	assert.Contains(t, h.noticeTexts(), "2 PM gastos. PM restante: 13")
}

func TestCastSpell_ZeroCostCostsOne(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, &character.Item{ID: "s1", Name: "Luz", Type: character.Magia})
	h.dice.Push(4, 4)

	_, err := h.resolver.CastSpell(context.Background(), "c1", "s1", action.SpellOptions{})
	require.NoError(t, err)
	assert.Equal(t, 16, h.character(t).PM.Value)
}

func TestCastSpell_RejectsNonSpell(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, sword())

	_, err := h.resolver.CastSpell(context.Background(), "c1", "w1", action.SpellOptions{})
	require.Error(t, err)
	assert.True(t, cdterr.Is(err, cdterr.CodeValidation))
	assert.Equal(t, "Item não é uma magia", err.Error())
}

func TestCastSpell_SpendFailureOnlyWarns(t *testing.T) {
	docs := storage.NewDocuments(memory.New(), zap.NewNop())
	h := newHarnessWithStore(t, docs, failingWrites{docs}, action.DefaultSettings())
	h.addItem(t, missile())
	h.dice.Push(4, 4)

	res, err := h.resolver.CastSpell(context.Background(), "c1", "s1", action.SpellOptions{})
	require.NoError(t, err)
	assert.Equal(t, check.Success, res.Outcome)
	assert.Contains(t, h.rec.Notices(), chat.Notice{Level: chat.Warn, Text: "Erro ao gastar PM, mas magia foi conjurada"})
	assert.Len(t, h.rec.Messages(), 2)
}

func TestSpellDifficulty_Bounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		spell := &character.Item{Nivel: rapid.IntRange(-5, 30).Draw(t, "nivel")}
		override := rapid.IntRange(-5, 40).Draw(t, "override")
		d := action.SpellDifficulty(spell, override)
		if d < action.MinSpellDifficulty || d > action.MaxSpellDifficulty {
			t.Fatalf("difficulty %d out of range", d)
		}
		if override <= 0 && spell.Nivel >= 1 && spell.Nivel <= 9 && d != 8+spell.Nivel {
			t.Fatalf("expected 8+%d, got %d", spell.Nivel, d)
		}
	})
}

func TestAttack_OutOfAmmoAbortsBeforeRolling(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, bow(0))
	h.dice.Push(6, 6)

	res, err := h.resolver.Attack(context.Background(), "c1", "w2", action.AttackOptions{})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, cdterr.Is(err, cdterr.CodeResource))
	assert.Equal(t, "Sem munição!", err.Error())
	assert.Equal(t, 2, h.dice.Remaining())

	item, err := h.docs.Item(context.Background(), "w2")
	require.NoError(t, err)
	assert.Equal(t, 0, item.Municao)
}

func TestAttack_SuccessRollsNormalDamage(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, sword())
	h.dice.Push(4, 4, 3)

	res, err := h.resolver.Attack(context.Background(), "c1", "w1", action.AttackOptions{TargetDefense: 12})
	require.NoError(t, err)
	assert.Equal(t, check.Success, res.Check.Outcome)
	assert.Equal(t, 12, res.Check.Difficulty)
	assert.Equal(t, 6, res.Check.AttributeValue, "melee uses fisico")
	require.NotNil(t, res.Damage)
	assert.Equal(t, 5.0, res.Damage.Total)

	msgs := h.rec.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Ataque com Espada Longa", msgs[0].Flavor)
	assert.Equal(t, "Dano", msgs[1].Flavor)
	assert.Equal(t, "Espada Longa", msgs[1].Card.Title)
}

func TestAttack_CriticalDoublesDamageOnce(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, sword())
	h.dice.Push(6, 6, 3)

	res, err := h.resolver.Attack(context.Background(), "c1", "w1", action.AttackOptions{})
	require.NoError(t, err)
	assert.Equal(t, check.CriticalSuccess, res.Check.Outcome)
	require.NotNil(t, res.Damage)
	assert.Equal(t, 10.0, res.Damage.Total)
	assert.Equal(t, "(1d6+2) * 2", res.Damage.Formula)
	assert.Equal(t, 0, h.dice.Remaining())

	msgs := h.rec.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Dano Crítico", msgs[1].Flavor)
	assert.Contains(t, h.noticeTexts(), "Acerto crítico! Dano dobrado!")
}

func TestAttack_RangedMissStillSpendsAmmo(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, bow(3))
	h.dice.Push(1, 2)

	res, err := h.resolver.Attack(context.Background(), "c1", "w2", action.AttackOptions{})
	require.NoError(t, err)
	assert.Equal(t, check.Failure, res.Check.Outcome)
	assert.Equal(t, action.DefaultAttackDifficulty, res.Check.Difficulty)
	assert.Equal(t, 4, res.Check.AttributeValue, "ranged uses acao")
	assert.Nil(t, res.Damage)

	item, err := h.docs.Item(context.Background(), "w2")
	require.NoError(t, err)
	assert.Equal(t, 2, item.Municao)
}

func TestAttack_SpendsAmmoFromItemAsOfAfterTheRoll(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, bow(1))
	h.dice.Push(1, 1)
	h.resolver.Scripts.OnCriticalFailure = func(ctx context.Context, _ *character.Character, _ check.Result) error {
		_, err := h.docs.UpdateItem(ctx, "w2", character.ItemPatch{Municao: character.Ptr(5)})
		return err
	}

	res, err := h.resolver.Attack(context.Background(), "c1", "w2", action.AttackOptions{})
	require.NoError(t, err)
	assert.Equal(t, check.CriticalFailure, res.Check.Outcome)

	item, err := h.docs.Item(context.Background(), "w2")
	require.NoError(t, err)
	assert.Equal(t, 4, item.Municao)
}

func TestAttackDifficulty_Precedence(t *testing.T) {
	assert.Equal(t, 15, action.AttackDifficulty(action.AttackOptions{Difficulty: 15, TargetDefense: 12}))
	assert.Equal(t, 12, action.AttackDifficulty(action.AttackOptions{TargetDefense: 12}))
	assert.Equal(t, 10, action.AttackDifficulty(action.AttackOptions{}))
}

func TestRollDamage_RejectsForeignCharacters(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.dice.Push(3)

	_, err := h.resolver.RollDamageFor(context.Background(), "c1", "1d6; drop", action.DamageOptions{})
	require.Error(t, err)
	assert.True(t, cdterr.Is(err, cdterr.CodeValidation))
	assert.Equal(t, 1, h.dice.Remaining())
	assert.Empty(t, h.rec.Messages())
}

func TestRollDamage_PostsLabelledCard(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.dice.Push(2, 5)

	roll, err := h.resolver.RollDamageFor(context.Background(), "c1", "2d6 + 1", action.DamageOptions{Source: "Machado"})
	require.NoError(t, err)
	assert.Equal(t, 8.0, roll.Total)
	msgs := h.rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Machado", msgs[0].Card.Title)
	assert.Equal(t, "Dano", msgs[0].Flavor)
	assert.Equal(t, "8", msgs[0].Card.Total)
}

func TestRollDamage_NilActor(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	_, err := h.resolver.RollDamage(context.Background(), nil, "1d6", action.DamageOptions{})
	assert.True(t, cdterr.Is(err, cdterr.CodeValidation))
}

func TestRollSkill_UsesAttributeAndBonus(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, &character.Item{ID: "k1", Name: "Persuasão", Type: character.Habilidade, Atributo: "social", Bonus: 2})
	h.dice.Push(3, 3)

	res, err := h.resolver.RollSkill(context.Background(), "c1", "k1", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.AttributeValue)
	assert.Equal(t, 2, res.SkillBonus)
	assert.Equal(t, 10, res.Total)
	assert.Equal(t, check.Success, res.Outcome)
	assert.Equal(t, "Persuasão", h.rec.Messages()[0].Flavor)
}

func TestSkillAttribute_DefaultsToFisico(t *testing.T) {
	assert.Equal(t, character.Fisico, action.SkillAttribute(&character.Item{}))
	assert.Equal(t, character.Mental, action.SkillAttribute(&character.Item{Atributo: "mental"}))
}

func TestRollInitiative(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.dice.Push(2, 5)

	roll, err := h.resolver.RollInitiative(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 11.0, roll.Total)
	assert.Equal(t, "Iniciativa", h.rec.Messages()[0].Flavor)
}

func TestUsePotion_HealsAndConsumes(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, &character.Item{ID: "p1", Name: "Poção de Cura", Type: character.Pocao,
		Tipo: character.PocaoCura, Recuperacao: "2d4+2", Quantidade: 2})
	h.set(t, character.PVValue, 10)
	ctx := context.Background()

	h.dice.Push(3, 4)
	roll, err := h.resolver.UsePotion(ctx, "c1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 9.0, roll.Total)
	assert.Equal(t, 19, h.character(t).PV.Value)
	item, err := h.docs.Item(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantidade)

	h.dice.Push(4, 4)
	_, err = h.resolver.UsePotion(ctx, "c1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 28, h.character(t).PV.Value, "healing is capped at max")
	_, err = h.docs.Item(ctx, "p1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUsePotion_RestoresPM(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, &character.Item{ID: "p1", Name: "Poção de Mana", Type: character.Pocao,
		Tipo: character.PocaoPM, Recuperacao: "1d4+1", Quantidade: 1})
	h.set(t, character.PMValue, 2)
	h.dice.Push(4)

	_, err := h.resolver.UsePotion(context.Background(), "c1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 7, h.character(t).PM.Value)
	assert.Equal(t, "Recuperação de PM de Poção de Mana", h.rec.Messages()[0].Flavor)
}

func TestUsePotion_DeclinedChangesNothing(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.addItem(t, &character.Item{ID: "p1", Name: "Poção de Cura", Type: character.Pocao,
		Tipo: character.PocaoCura, Recuperacao: "2d4+2", Quantidade: 1})
	*h.answer = false

	roll, err := h.resolver.UsePotion(context.Background(), "c1", "p1")
	require.NoError(t, err)
	assert.Nil(t, roll)
	_, err = h.docs.Item(context.Background(), "p1")
	assert.NoError(t, err)
	assert.Empty(t, h.rec.Messages())
}

func TestRests(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	ctx := context.Background()
	h.set(t, character.PVValue, 10)
	h.set(t, character.PMValue, 3)

	ok, err := h.resolver.QuickRest(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	c := h.character(t)
	assert.Equal(t, 24, c.PV.Value)
	assert.Equal(t, 11, c.PM.Value)

	ok, err = h.resolver.LongRest(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	c = h.character(t)
	assert.Equal(t, 28, c.PV.Value)
	assert.Equal(t, 17, c.PM.Value)
	assert.Equal(t, []string{"Descanso rápido realizado!", "Descanso longo realizado!"}, h.noticeTexts())
}

func TestRest_Declined(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.set(t, character.PVValue, 10)
	*h.answer = false

	ok, err := h.resolver.LongRest(context.Background(), "c1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 10, h.character(t).PV.Value)
}

func TestToggleEquip(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	ctx := context.Background()
	h.addItem(t, &character.Item{ID: "a1", Name: "Couro", Type: character.Armadura, Defesa: 2})
	h.addItem(t, &character.Item{ID: "a2", Name: "Malha", Type: character.Armadura, Defesa: 3})
	h.addItem(t, &character.Item{ID: "p1", Name: "Poção", Type: character.Pocao})

	item, err := h.resolver.ToggleEquip(ctx, "c1", "a1")
	require.NoError(t, err)
	assert.True(t, item.Equipado)

	_, err = h.resolver.ToggleEquip(ctx, "c1", "a2")
	require.Error(t, err, "only one armor at a time")
	assert.Equal(t, "Não é possível equipar este item!", err.Error())

	_, err = h.resolver.ToggleEquip(ctx, "c1", "p1")
	require.Error(t, err)

	item, err = h.resolver.ToggleEquip(ctx, "c1", "a1")
	require.NoError(t, err)
	assert.False(t, item.Equipado)

	_, err = h.resolver.ToggleEquip(ctx, "c1", "a2")
	assert.NoError(t, err)
}

func TestAddItem_AdjustsForCharacter(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	spell := &character.Item{Name: "Bola de Fogo", Type: character.Magia, CustoMP: 5}

	owned, err := h.resolver.AddItem(context.Background(), "c1", spell)
	require.NoError(t, err)
	require.NotNil(t, owned)
	assert.NotEmpty(t, owned.ID)
	assert.Equal(t, "c1", owned.OwnerID)
	assert.Equal(t, 4, owned.CustoMP, "mental 6 lowers the cost by its modifier")
	assert.Equal(t, 5, spell.CustoMP, "the template is not modified")
	assert.Contains(t, h.noticeTexts(), "Bola de Fogo adicionado a Aldric!")
}

func TestAddItem_UnmetPrerequisitesNeedConfirmation(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	axe := &character.Item{Name: "Machado", Type: character.Arma, Prerequisitos: "fisico 9"}
	*h.answer = false

	owned, err := h.resolver.AddItem(context.Background(), "c1", axe)
	require.NoError(t, err)
	assert.Nil(t, owned)
	items, err := h.docs.Items(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, items)

	*h.answer = true
	owned, err = h.resolver.AddItem(context.Background(), "c1", axe)
	require.NoError(t, err)
	assert.NotNil(t, owned)
}

func TestLevelUp(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	ctx := context.Background()

	_, ok, err := h.resolver.LevelUp(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, ok)

	h.set(t, character.NivelXP, 12)
	level, ok, err := h.resolver.LevelUp(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, level)

	c := h.character(t)
	assert.Equal(t, character.Level{Value: 2, XP: 2, XPProximo: 30}, *c.Nivel)
	assert.Equal(t, 1, c.Progressao.PontosAtributo)
	assert.Equal(t, 2, c.Progressao.PontosHabilidade)
	assert.Contains(t, h.noticeTexts(), "Aldric subiu para o nível 2!")
	assert.Equal(t, "level-up", h.rec.Messages()[0].Card.Kind)
}

func TestUseItem_Dispatch(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	ctx := context.Background()
	unequipped := sword()
	unequipped.Equipado = false
	h.addItem(t, unequipped)
	h.addItem(t, &character.Item{ID: "g1", Name: "Corda", Type: character.Equipamento})
	h.addItem(t, &character.Item{ID: "s9", Name: "Meteoro", Type: character.Magia, NivelMinimo: 5})

	_, err := h.resolver.UseItem(ctx, "c1", "w1", action.UseOptions{})
	require.Error(t, err)
	assert.Equal(t, "Arma não está equipada!", err.Error())

	_, err = h.resolver.UseItem(ctx, "c1", "g1", action.UseOptions{})
	assert.Error(t, err)

	_, err = h.resolver.UseItem(ctx, "c1", "s9", action.UseOptions{})
	require.Error(t, err)
	assert.Equal(t, "Pré-requisitos não atendidos", err.Error())

	_, err = h.resolver.ToggleEquip(ctx, "c1", "w1")
	require.NoError(t, err)
	h.dice.Push(4, 4, 1)
	res, err := h.resolver.UseItem(ctx, "c1", "w1", action.UseOptions{TargetDefense: 9})
	require.NoError(t, err)
	assert.NotNil(t, res.Check)
	assert.NotNil(t, res.Damage)
}

func TestOwnedItem_RejectsForeignItems(t *testing.T) {
	h := newHarness(t, action.DefaultSettings())
	h.createCharacter(t, "c2", "mago")
	h.addItem(t, &character.Item{ID: "s2", OwnerID: "c2", Name: "Faísca", Type: character.Magia})

	_, err := h.resolver.CastSpell(context.Background(), "c1", "s2", action.SpellOptions{})
	require.Error(t, err)
	assert.True(t, cdterr.Is(err, cdterr.CodeValidation))
}
