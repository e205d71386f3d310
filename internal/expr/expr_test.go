package expr

import (
	"math"
	"testing"

	"github.com/specialistvlad/cmdlist/internal/pipeline"
	"github.com/specialistvlad/cmdlist/internal/vars"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnv struct {
	telemetry map[pipeline.Telemetry]float32
	params    map[[2]int]float32
	filters   map[pipeline.Slot]pipeline.FilterMatch
}

func (e *fakeEnv) Telemetry(t pipeline.Telemetry, _ int) float32 { return e.telemetry[t] }
func (e *fakeEnv) Param(slot, comp int) float32                  { return e.params[[2]int{slot, comp}] }
func (e *fakeEnv) FilterIndex(s pipeline.Slot) pipeline.FilterMatch {
	return e.filters[s]
}

func eval(t *testing.T, text string) float32 {
	t.Helper()
	e, err := Parse(text, nil, Options{})
	require.NoError(t, err, text)
	return e.Evaluate(&fakeEnv{})
}

func TestParse_Arithmetic(t *testing.T) {
	tests := []struct {
		text string
		want float32
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"8 / 4 / 2", 1},
		{"10 - 4 - 3", 3},
		{"7 % 4", 3},
		{"-2 * 3", -6},
		{"2 * -3", -6},
		{"- -4", 4},
		{"1 - -1", 2},
		{"((5))", 5},
		{".5 + 1e1", 10.5},
		{"!0", 1},
		{"!3", 0},
		{"2 < 3", 1},
		{"3 <= 2", 0},
		{"1 + 1 == 2", 1},
		{"1 != 1", 0},
		{"1 && 0 || 1", 1},
		{"0 || 0", 0},
		{"1 < 2 == 1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, eval(t, tt.text))
		})
	}
}

func TestParse_DivisionByZero(t *testing.T) {
	assert.True(t, math.IsInf(float64(eval(t, "1 / 0")), 1))
	assert.True(t, math.IsInf(float64(eval(t, "-1 / 0")), -1))
	assert.True(t, math.IsNaN(float64(eval(t, "1 % 0"))))
}

func TestParse_NegativeTruth(t *testing.T) {
	e, err := Parse("2 > 1", nil, Options{NegativeTruth: true})
	require.NoError(t, err)
	assert.Equal(t, float32(-1), e.Evaluate(&fakeEnv{}))

	e, err = Parse("!0 && 1", nil, Options{NegativeTruth: true})
	require.NoError(t, err)
	assert.Equal(t, float32(-1), e.Evaluate(&fakeEnv{}))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		text string
		msg  string
	}{
		{"", "empty expression"},
		{"()", "empty expression"},
		{"(1 + 2", "unbalanced '('"},
		{"1 + 2)", "unbalanced ')'"},
		{"1 +", "missing operand"},
		{"* 2", "missing operand"},
		{"1 2", "missing operator"},
		{"1 = 2", "unexpected character"},
		{"bogus", "unknown identifier"},
		{"2x", "malformed number"},
		{"$x", "variables are not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			e, err := Parse(tt.text, nil, Options{})
			assert.Nil(t, e)
			var syn *SyntaxError
			require.ErrorAs(t, err, &syn)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParse_Variables(t *testing.T) {
	table := vars.NewTable()
	scope := vars.NewScope(table, "")
	x, err := scope.Declare("$x", 0, 0)
	require.NoError(t, err)

	e, err := Parse("$x * 2 + 1", scope, Options{})
	require.NoError(t, err)

	x.Store(3)
	assert.Equal(t, float32(7), e.Evaluate(&fakeEnv{}))
	x.Store(-1)
	assert.Equal(t, float32(-1), e.Evaluate(&fakeEnv{}))

	_, ok := e.StaticEvaluate()
	assert.False(t, ok, "variable references are never static")

	_, err = Parse("$y + 1", scope, Options{})
	assert.ErrorIs(t, err, vars.ErrUnresolved)
}

func TestParse_Operands(t *testing.T) {
	env := &fakeEnv{
		telemetry: map[pipeline.Telemetry]float32{pipeline.RTWidth: 1280, pipeline.CursorShowing: 1},
		params:    map[[2]int]float32{{0, 0}: 0.25, {3, 1}: 4},
		filters: map[pipeline.Slot]pipeline.FilterMatch{
			{Stage: pipeline.StagePixel, Kind: pipeline.KindShaderResource}: {Matched: true, HasIndex: true, Index: 2},
			{Stage: pipeline.StageVertex, Kind: pipeline.KindShader}:        {Matched: true},
		},
	}
	tests := []struct {
		text string
		want float32
	}{
		{"rt_width / 2", 640},
		{"cursor_showing", 1},
		{"x", 0.25},
		{"y3 * 2", 8},
		{"ps-t0", 2},
		{"ps-t0 == 2", 1},
		{"ps-t0-1", 1},
		{"vs", 1},
		{"ps", 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			e, err := Parse(tt.text, nil, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Evaluate(env))
		})
	}

	_, err := Parse("y9", nil, Options{})
	assert.ErrorContains(t, err, "unknown identifier")
	_, err = Parse("y9", nil, Options{ParamSlots: 16})
	assert.NoError(t, err)
}

func TestOptimise_FoldsConstants(t *testing.T) {
	e, err := Parse("(1 + 2) * 3 - 4 / 2", nil, Options{})
	require.NoError(t, err)

	v, ok := e.StaticEvaluate()
	require.True(t, ok)
	assert.Equal(t, float32(7), v)

	before := e.Evaluate(&fakeEnv{})
	assert.True(t, e.Optimise())
	require.IsType(t, &Literal{}, e.Root())
	assert.Equal(t, before, e.Evaluate(&fakeEnv{}))
	assert.False(t, e.Optimise(), "a literal has nothing left to fold")
}

func TestOptimise_PartialFold(t *testing.T) {
	scope := vars.NewScope(vars.NewTable(), "")
	x, err := scope.Declare("$x", 0, 0)
	require.NoError(t, err)
	x.Store(10)

	e, err := Parse("$x + 2 * 3", scope, Options{})
	require.NoError(t, err)
	assert.True(t, e.Optimise())

	op, ok := e.Root().(*Operator)
	require.True(t, ok)
	assert.IsType(t, &VarRef{}, op.Left)
	assert.Equal(t, &Literal{Value: 6}, op.Right)
	assert.Equal(t, float32(16), e.Evaluate(&fakeEnv{}))
	assert.Equal(t, "($x + 6)", e.String())
}

func TestOperator_UnaryHasImplicitLeft(t *testing.T) {
	e, err := Parse("-5", nil, Options{})
	require.NoError(t, err)
	op, ok := e.Root().(*Operator)
	require.True(t, ok)
	assert.True(t, op.Unary())
	assert.Equal(t, &Literal{Value: 0}, op.Left)
	assert.Equal(t, "-5", op.String())
}

func TestParseParam(t *testing.T) {
	slot, comp, ok := ParseParam("W7", 8)
	require.True(t, ok)
	assert.Equal(t, 7, slot)
	assert.Equal(t, 3, comp)

	for _, bad := range []string{"", "q", "x8", "x+1", "xx"} {
		_, _, ok := ParseParam(bad, 8)
		assert.False(t, ok, bad)
	}
}
