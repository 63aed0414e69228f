package expr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testEnv struct{ vars map[string]any }

func newTestEnv() *testEnv { return &testEnv{vars: make(map[string]any)} }

func (e *testEnv) Get(name string) (any, bool) { v, ok := e.vars[name]; return v, ok }
func (e *testEnv) Set(name string, value any)  { e.vars[name] = value }

func newTestEvaluator() (*Evaluator, *testEnv) {
	env := newTestEnv()
	return NewEvaluator(env, nil), env
}

func TestEval_Literals(t *testing.T) {
	ev, _ := newTestEvaluator()
	v, err := ev.EvalString(`"hi"`)
	require.NoError(t, err)
	require.Equal(t, "hi", v)

	v, err = ev.EvalString("42")
	require.NoError(t, err)
	require.Equal(t, float64(42), v)

	v, err = ev.EvalString("None")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestEval_IdentUnboundIsNone(t *testing.T) {
	ev, _ := newTestEvaluator()
	v, err := ev.EvalString("missing")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestEval_Arithmetic(t *testing.T) {
	ev, _ := newTestEvaluator()
	v, err := ev.EvalString("1 + 2 * 3")
	require.NoError(t, err)
	require.Equal(t, float64(7), v)
}

func TestEval_StringConcat(t *testing.T) {
	ev, _ := newTestEvaluator()
	v, err := ev.EvalString(`"a" + "b"`)
	require.NoError(t, err)
	require.Equal(t, "ab", v)
}

func TestEval_ListConcat(t *testing.T) {
	ev, _ := newTestEvaluator()
	v, err := ev.EvalString("[1, 2] + [3]")
	require.NoError(t, err)
	require.Equal(t, []any{float64(1), float64(2), float64(3)}, v)
}

func TestEval_DivisionByZero(t *testing.T) {
	ev, _ := newTestEvaluator()
	_, err := ev.EvalString("1 / 0")
	require.Error(t, err)
}

func TestEval_FloorDivAndModulo(t *testing.T) {
	ev, _ := newTestEvaluator()
	v, err := ev.EvalString("7 // 2")
	require.NoError(t, err)
	require.Equal(t, float64(3), v)

	v, err = ev.EvalString("7 % 2")
	require.NoError(t, err)
	require.Equal(t, float64(1), v)
}

func TestEval_Comparisons(t *testing.T) {
	ev, _ := newTestEvaluator()
	v, err := ev.EvalBool("1 < 2")
	require.NoError(t, err)
	require.True(t, v)

	v, err = ev.EvalBool(`"a" < "b"`)
	require.NoError(t, err)
	require.True(t, v)
}

func TestEval_InOperator(t *testing.T) {
	ev, _ := newTestEvaluator()
	v, err := ev.EvalBool(`"a" in ["a", "b"]`)
	require.NoError(t, err)
	require.True(t, v)

	v, err = ev.EvalBool(`"x" in "xyz"`)
	require.NoError(t, err)
	require.True(t, v)
}

func TestEval_AndOrShortCircuit(t *testing.T) {
	ev, env := newTestEvaluator()
	env.Set("a", false)
	v, err := ev.EvalString("a and 1")
	require.NoError(t, err)
	require.Equal(t, false, v)

	v, err = ev.EvalString("a or 2")
	require.NoError(t, err)
	require.Equal(t, float64(2), v)
}

func TestEval_IndexListAndMap(t *testing.T) {
	ev, env := newTestEvaluator()
	env.Set("xs", []any{float64(10), float64(20)})
	env.Set("m", map[string]any{"k": "v"})

	v, err := ev.EvalString("xs[1]")
	require.NoError(t, err)
	require.Equal(t, float64(20), v)

	v, err = ev.EvalString(`m["k"]`)
	require.NoError(t, err)
	require.Equal(t, "v", v)
}

func TestEval_Attr(t *testing.T) {
	ev, env := newTestEvaluator()
	env.Set("m", map[string]any{"name": "bamboo"})
	v, err := ev.EvalString("m.name")
	require.NoError(t, err)
	require.Equal(t, "bamboo", v)
}

func TestEval_CallEnvBoundCallable(t *testing.T) {
	ev, env := newTestEvaluator()
	env.Set("double", CallableFunc(func(args []any) (any, error) {
		return args[0].(float64) * 2, nil
	}))
	v, err := ev.EvalString("double(21)")
	require.NoError(t, err)
	require.Equal(t, float64(42), v)
}

func TestEval_CallResolverFallback(t *testing.T) {
	env := newTestEnv()
	resolve := func(name string) (Callable, bool) {
		if name != "shout" {
			return nil, false
		}
		return CallableFunc(func(args []any) (any, error) {
			return Stringify(args[0]) + "!", nil
		}), true
	}
	ev := NewEvaluator(env, resolve)
	v, err := ev.EvalString(`shout("hi")`)
	require.NoError(t, err)
	require.Equal(t, "hi!", v)
}

func TestEval_CallUndefinedIsError(t *testing.T) {
	ev, _ := newTestEvaluator()
	_, err := ev.EvalString("nope()")
	require.Error(t, err)
}

func TestEval_Exec(t *testing.T) {
	ev, env := newTestEvaluator()
	err := ev.Exec("x = 1 + 1\ny = x + 1")
	require.NoError(t, err)
	v, ok := env.Get("x")
	require.True(t, ok)
	require.Equal(t, float64(2), v)
	v, ok = env.Get("y")
	require.True(t, ok)
	require.Equal(t, float64(3), v)
}

func TestEval_IterateSingleTarget(t *testing.T) {
	ev, env := newTestEvaluator()
	env.Set("items", []any{float64(1), float64(2), float64(3)})
	out, err := ev.Iterate("((x) for x in items)")
	require.NoError(t, err)
	require.Equal(t, []any{float64(1), float64(2), float64(3)}, out)
}

func TestEval_IterateTupleTarget(t *testing.T) {
	ev, env := newTestEvaluator()
	env.Set("pairs", []any{
		[]any{"a", float64(1)},
		[]any{"b", float64(2)},
	})
	out, err := ev.Iterate("((k) for k, v in pairs)")
	require.NoError(t, err)
	require.Equal(t, []any{"a", "b"}, out)
}

func TestEval_IterateRebindsTargetsInEnv(t *testing.T) {
	ev, env := newTestEvaluator()
	env.Set("items", []any{float64(5)})
	_, err := ev.Iterate("((x) for x in items)")
	require.NoError(t, err)
	v, ok := env.Get("x")
	require.True(t, ok)
	require.Equal(t, float64(5), v)
}

func TestTruthy(t *testing.T) {
	require.False(t, Truthy(nil))
	require.False(t, Truthy(false))
	require.False(t, Truthy(float64(0)))
	require.False(t, Truthy(""))
	require.False(t, Truthy([]any{}))
	require.True(t, Truthy("x"))
	require.True(t, Truthy(float64(1)))
	require.True(t, Truthy([]any{1}))
}

func TestStringify(t *testing.T) {
	require.Equal(t, "", Stringify(nil))
	require.Equal(t, "True", Stringify(true))
	require.Equal(t, "False", Stringify(false))
	require.Equal(t, "hi", Stringify("hi"))
	require.Equal(t, "3", Stringify(float64(3)))
	require.Equal(t, "[1, 2]", Stringify([]any{float64(1), float64(2)}))
}

func TestAsIterable(t *testing.T) {
	out, err := AsIterable("ab")
	require.NoError(t, err)
	require.Equal(t, []any{"a", "b"}, out)

	_, err = AsIterable(float64(1))
	require.Error(t, err)
}

func TestUnpack(t *testing.T) {
	v, err := Unpack("x", 1)
	require.NoError(t, err)
	require.Equal(t, []any{"x"}, v)

	_, err = Unpack("x", 2)
	require.Error(t, err)

	v, err = Unpack([]any{"a", "b"}, 2)
	require.NoError(t, err)
	require.Equal(t, []any{"a", "b"}, v)
}
