package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	cdterr "github.com/cory-johannsen/taberneiros/internal/errors"
	"github.com/cory-johannsen/taberneiros/internal/game/dice"
	"github.com/cory-johannsen/taberneiros/internal/game/dice/dicetest"
)

func TestEvaluate_TwoD6PlusVariables(t *testing.T) {
	src := dicetest.NewQueue(4, 5)
	res, err := dice.EvaluateString("2d6 + @attr + @bonus", map[string]float64{"attr": 3, "bonus": -1}, src)
	require.NoError(t, err)

	assert.Equal(t, 11.0, res.Total)
	require.Len(t, res.Dice, 1)
	assert.Equal(t, dice.Term{Count: 2, Sides: 6, Results: []int{4, 5}}, res.Dice[0])
	assert.Equal(t, 9, res.Natural())
}

func TestEvaluate_PrecedenceAndGroups(t *testing.T) {
	cases := []struct {
		formula string
		faces   []int
		want    float64
	}{
		{"1 + 2 * 3", nil, 7},
		{"(1 + 2) * 3", nil, 9},
		{"(1d6+2) * 2", []int{3}, 10},
		{"3/2", nil, 1.5},
		{"1d8 - 1d4", []int{8, 3}, 5},
		{"d20", []int{17}, 17},
		{"10 - -2", nil, 12},
		{"1d6 + +2", []int{1}, 3},
		{"2.5 * 2", nil, 5},
	}
	for _, tc := range cases {
		t.Run(tc.formula, func(t *testing.T) {
			res, err := dice.EvaluateString(tc.formula, nil, dicetest.NewQueue(tc.faces...))
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Total)
		})
	}
}

func TestEvaluate_DiceInOrder(t *testing.T) {
	res, err := dice.EvaluateString("1d4 + 2d8 + 1d6", nil, dicetest.NewQueue(2, 7, 1, 6))
	require.NoError(t, err)
	require.Len(t, res.Dice, 3)
	assert.Equal(t, 4, res.Dice[0].Sides)
	assert.Equal(t, []int{7, 1}, res.Dice[1].Results)
	assert.Equal(t, 6, res.Dice[2].Sides)
	assert.Equal(t, 16.0, res.Total)
}

func TestParse_Malformed(t *testing.T) {
	for _, formula := range []string{
		"",
		"   ",
		"(2d6",
		"2d6)",
		"2d6 +",
		"* 3",
		"2d",
		"0d6",
		"2d0",
		"101d6",
		"1d1001",
		"2 d6",
		"abc",
		"2d6 # 3",
	} {
		t.Run(fmt.Sprintf("%q", formula), func(t *testing.T) {
			_, err := dice.Parse(formula)
			require.Error(t, err)
			assert.Equal(t, cdterr.CodeFormula, cdterr.CodeOf(err))
		})
	}
}

func TestEvaluate_UnknownVariable(t *testing.T) {
	_, err := dice.EvaluateString("2d6 + @sorte", map[string]float64{"attr": 1}, dicetest.NewQueue(1, 1))
	require.Error(t, err)
	assert.True(t, cdterr.Is(err, cdterr.CodeFormula))
}

func TestEvaluate_DivisionByZero(t *testing.T) {
	_, err := dice.EvaluateString("4 / (2 - 2)", nil, dicetest.NewQueue())
	require.Error(t, err)
	assert.True(t, cdterr.Is(err, cdterr.CodeFormula))
}

func TestValidateDamageFormula(t *testing.T) {
	for _, ok := range []string{"1d6+2", "(1d8) * 2", "2d4 - 1", "10"} {
		assert.NoError(t, dice.ValidateDamageFormula(ok), ok)
	}
	for _, bad := range []string{"", "1d6+@str", "1d6; drop", "1D6", "2.5", "1d6\n"} {
		err := dice.ValidateDamageFormula(bad)
		require.Error(t, err, bad)
		assert.Equal(t, cdterr.CodeValidation, cdterr.CodeOf(err), bad)
	}
}

func TestResult_String(t *testing.T) {
	r := dice.Result{Formula: "2d6+3", Total: 12, Dice: []dice.Term{{Count: 2, Sides: 6, Results: []int{4, 5}}}}
	assert.Equal(t, "2d6+3 → [4 5] = 12", r.String())

	frac := dice.Result{Formula: "3/2", Total: 1.5}
	assert.Equal(t, "3/2 →  = 1.5", frac.String())
}

func TestResult_String_PanicsOnEmptyFormula(t *testing.T) {
	assert.Panics(t, func() { _ = dice.Result{}.String() })
}

func TestRoller_LogsAndEvaluates(t *testing.T) {
	roller := dice.NewLoggedRoller(dicetest.NewQueue(6, 6), zap.NewNop())
	res, err := roller.Evaluate("2d6", nil)
	require.NoError(t, err)
	assert.Equal(t, 12, res.IntTotal())
	assert.Equal(t, 12, res.Natural())
}

// TestEvaluate_DieResultsInRange verifies every die lands in [1, sides] and
// that the total equals the sum of the dice for plain NdS formulas.
func TestEvaluate_DieResultsInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 20).Draw(rt, "count")
		sides := rapid.IntRange(1, 100).Draw(rt, "sides")
		seed := rapid.Int64().Draw(rt, "seed")

		res, err := dice.EvaluateString(fmt.Sprintf("%dd%d", count, sides), nil, dice.NewSeededSource(seed))
		require.NoError(rt, err)
		require.Len(rt, res.Dice, 1)
		require.Len(rt, res.Dice[0].Results, count)
		for _, r := range res.Dice[0].Results {
			assert.GreaterOrEqual(rt, r, 1)
			assert.LessOrEqual(rt, r, sides)
		}
		assert.Equal(rt, float64(res.Dice[0].Sum()), res.Total)
	})
}

// TestEvaluate_ConstantArithmetic checks integer arithmetic against Go's own.
func TestEvaluate_ConstantArithmetic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(0, 1000).Draw(rt, "a")
		b := rapid.IntRange(0, 1000).Draw(rt, "b")
		c := rapid.IntRange(1, 50).Draw(rt, "c")

		res, err := dice.EvaluateString(fmt.Sprintf("%d + %d * %d - (%d - %d)", a, b, c, b, a), nil, dicetest.NewQueue())
		require.NoError(rt, err)
		assert.Equal(rt, float64(a+b*c-(b-a)), res.Total)
	})
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(6), b.Intn(6))
	}
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestSources_PanicOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
	assert.Panics(t, func() { dice.NewSeededSource(1).Intn(0) })
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "12", dice.FormatNumber(12))
	assert.Equal(t, "1.5", dice.FormatNumber(1.5))
	assert.Equal(t, "0.33", dice.FormatNumber(1.0/3))
	assert.True(t, strings.HasPrefix(dice.FormatNumber(-2), "-"))
}
