package check

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/cory-johannsen/taberneiros/internal/chat"
	cdterr "github.com/cory-johannsen/taberneiros/internal/errors"
	"github.com/cory-johannsen/taberneiros/internal/game/character"
	"github.com/cory-johannsen/taberneiros/internal/game/dice"
)

// Bounds applied to check inputs.
const (
	DefaultDifficulty = 9
	MinDifficulty     = 2
	MaxDifficulty     = 20
	MaxSkillBonus     = 10
)

// Formula is the dice expression of every check.
const Formula = "2d6 + @total"

// Callback runs after classification for a critical outcome. The zero value
// means no callback.
type Callback func(ctx context.Context, actor *character.Character, res Result) error

// Request describes one check.
type Request struct {
	Actor     *character.Character
	Attribute character.AttributeName
	// Bonus is clamped to [-MaxSkillBonus, MaxSkillBonus].
	Bonus int
	// Difficulty is clamped to [MinDifficulty, MaxDifficulty]; zero means DefaultDifficulty.
	Difficulty int
	// Flavor overrides the card title; defaults to "Teste de <Atributo>".
	Flavor            string
	OnCriticalSuccess Callback
	OnCriticalFailure Callback
}

// Result is the outcome of a resolved check.
type Result struct {
	Roll           dice.Result
	Total          int
	Outcome        Outcome
	NaturalRoll    int
	AttributeValue int
	SkillBonus     int
	Difficulty     int
}

// Margin returns Total - Difficulty.
func (r Result) Margin() int {
	return r.Total - r.Difficulty
}

// Resolver runs checks and posts their cards.
type Resolver struct {
	roller *dice.Roller
	sink   chat.Sink
	logger *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: roller, sink and logger must be non-nil.
func NewResolver(roller *dice.Roller, sink chat.Sink, logger *zap.Logger) *Resolver {
	return &Resolver{roller: roller, sink: sink, logger: logger}
}

// Resolve runs one check through Idle → Rolled → Classified → Resolved.
//
// Precondition: req.Actor carries req.Attribute.
// Postcondition: on error nothing was posted and the result is nil; otherwise
// exactly one card was offered to the sink. Callback failures are logged and
// never change the result.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	run := &resolution{logger: r.logger}

	if req.Actor == nil {
		return nil, cdterr.Validation("Ator inválido para rolagem")
	}
	if _, ok := character.ParseAttribute(string(req.Attribute)); !ok {
		return nil, cdterr.Validationf("Atributo inválido para rolagem: %q", req.Attribute)
	}
	attr := req.Actor.Attribute(req.Attribute)
	if attr == nil {
		return nil, cdterr.Validationf("Atributo %q não encontrado no personagem", req.Attribute).
			WithMeta("character_id", req.Actor.ID)
	}
	if err := ctx.Err(); err != nil {
		return nil, cdterr.Wrap(err, "rolagem cancelada")
	}

	res := Result{
		AttributeValue: max(0, attr.Value),
		SkillBonus:     min(max(req.Bonus, -MaxSkillBonus), MaxSkillBonus),
		Difficulty:     ClampDifficulty(req.Difficulty),
	}
	modifier := res.AttributeValue + res.SkillBonus

	roll, err := r.roller.Evaluate(Formula, map[string]float64{"total": float64(modifier)})
	if err != nil {
		return nil, err
	}
	res.Roll = roll
	res.Total = roll.IntTotal()
	res.NaturalRoll = roll.Natural()
	run.advance(Rolled)

	res.Outcome = Classify(res.NaturalRoll, res.Total, res.Difficulty)
	run.advance(Classified)

	switch res.Outcome {
	case CriticalSuccess:
		r.invoke(ctx, "onCriticalSuccess", req.OnCriticalSuccess, req.Actor, res)
	case CriticalFailure:
		r.invoke(ctx, "onCriticalFailure", req.OnCriticalFailure, req.Actor, res)
	}

	flavor := req.Flavor
	if flavor == "" {
		flavor = "Teste de " + character.AttributeLabel(req.Attribute)
	}
	msg := chat.Message{
		Speaker: req.Actor.Name,
		Flavor:  flavor,
		Card:    card(flavor, req.Attribute, modifier, res),
		Roll:    &res.Roll,
	}
	if err := r.sink.Send(ctx, msg); err != nil {
		r.logger.Warn("posting check card", zap.String("character_id", req.Actor.ID), zap.Error(err))
	}
	run.advance(Resolved)

	r.logger.Debug("check resolved",
		zap.String("character_id", req.Actor.ID),
		zap.String("attribute", string(req.Attribute)),
		zap.Int("total", res.Total),
		zap.Int("natural", res.NaturalRoll),
		zap.Int("difficulty", res.Difficulty),
		zap.Stringer("outcome", res.Outcome),
	)
	return &res, nil
}

// ClampDifficulty bounds d to [MinDifficulty, MaxDifficulty]; zero yields DefaultDifficulty.
func ClampDifficulty(d int) int {
	if d == 0 {
		return DefaultDifficulty
	}
	return min(max(d, MinDifficulty), MaxDifficulty)
}

func (r *Resolver) invoke(ctx context.Context, name string, cb Callback, actor *character.Character, res Result) {
	if cb == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("critical callback panicked",
				zap.String("callback", name),
				zap.String("character_id", actor.ID),
				zap.Any("panic", p),
			)
		}
	}()
	if err := cb(ctx, actor.Clone(), res); err != nil {
		r.logger.Error("critical callback failed",
			zap.String("callback", name),
			zap.String("character_id", actor.ID),
			zap.Error(err),
		)
	}
}

func card(flavor string, attr character.AttributeName, modifier int, res Result) chat.Card {
	breakdown := fmt.Sprintf("%s %d", character.AttributeLabel(attr), res.AttributeValue)
	if res.SkillBonus != 0 {
		breakdown += fmt.Sprintf(" %+d", res.SkillBonus)
	}
	margin := chat.Field{Label: "Margem", Value: strconv.Itoa(res.Margin())}
	if res.Margin() < 0 {
		margin = chat.Field{Label: "Faltou", Value: strconv.Itoa(-res.Margin())}
	}
	return chat.Card{
		Kind:       "check",
		Title:      flavor,
		Outcome:    res.Outcome.Label(),
		OutcomeKey: res.Outcome.Key(),
		Fields: []chat.Field{
			{Label: "Dados", Value: fmt.Sprintf("%d + %d", res.NaturalRoll, modifier)},
			{Label: "ND", Value: strconv.Itoa(res.Difficulty)},
			margin,
		},
		Formula: fmt.Sprintf("2d6 + %d (%s)", modifier, breakdown),
		Total:   strconv.Itoa(res.Total),
	}
}

// resolution tracks the state of one check.
type resolution struct {
	state  State
	logger *zap.Logger
}

func (r *resolution) advance(to State) {
	if to != r.state+1 {
		panic(fmt.Sprintf("check: illegal transition %s → %s", r.state, to))
	}
	r.logger.Debug("check state", zap.Stringer("from", r.state), zap.Stringer("to", to))
	r.state = to
}
