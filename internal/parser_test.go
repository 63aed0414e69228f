package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func parseSrc(t *testing.T, src string) *RootNode {
	t.Helper()
	toks, err := NewLexer(src, nil).Tokenize()
	require.NoError(t, err)
	root, err := NewParser(toks, nil).Parse()
	require.NoError(t, err)
	return root
}

func parseErr(t *testing.T, src string) *Error {
	t.Helper()
	toks, err := NewLexer(src, nil).Tokenize()
	require.NoError(t, err)
	_, err = NewParser(toks, nil).Parse()
	require.Error(t, err)
	ie, ok := err.(*Error)
	require.True(t, ok)
	return ie
}

func TestParser_TextAndCode(t *testing.T) {
	root := parseSrc(t, "hi {{ name }}!")
	require.Len(t, root.Children, 3)
	require.IsType(t, &TextNode{}, root.Children[0])
	code, ok := root.Children[1].(*CodeNode)
	require.True(t, ok)
	require.Equal(t, "name", code.Body)
}

func TestParser_CommentDiscarded(t *testing.T) {
	root := parseSrc(t, "a{# note #}b")
	require.Len(t, root.Children, 2)
	require.IsType(t, &TextNode{}, root.Children[0])
	require.IsType(t, &TextNode{}, root.Children[1])
}

func TestParser_CommentBlockNests(t *testing.T) {
	root := parseSrc(t, "{% comment %}x{{ y }}{% endcomment %}")
	require.Len(t, root.Children, 1)
	cb, ok := root.Children[0].(*CommentBlockNode)
	require.True(t, ok)
	require.Len(t, cb.Children, 2)
}

func TestParser_IfOnly(t *testing.T) {
	root := parseSrc(t, "{% if x %}a{% endif %}")
	require.Len(t, root.Children, 1)
	cond, ok := root.Children[0].(*ConditionalNode)
	require.True(t, ok)
	require.Len(t, cond.Branches, 1)
	require.Equal(t, CondIf, cond.Branches[0].Kind)
	require.Equal(t, "x", cond.Branches[0].Expression)
}

func TestParser_IfElifElse(t *testing.T) {
	root := parseSrc(t, "{% if x %}a{% elif y %}b{% else %}c{% endif %}")
	cond := root.Children[0].(*ConditionalNode)
	require.Len(t, cond.Branches, 3)
	require.Equal(t, CondIf, cond.Branches[0].Kind)
	require.Equal(t, CondElif, cond.Branches[1].Kind)
	require.Equal(t, "y", cond.Branches[1].Expression)
	require.Equal(t, CondElse, cond.Branches[2].Kind)
	require.Equal(t, "True", cond.Branches[2].Expression)
}

func TestParser_ElifMissingExpression(t *testing.T) {
	ie := parseErr(t, "{% if x %}a{% elif %}b{% endif %}")
	require.Equal(t, ErrExpressionMissing, ie.Kind)
}

func TestParser_ElseWithExpressionProhibited(t *testing.T) {
	ie := parseErr(t, "{% if x %}a{% else y %}b{% endif %}")
	require.Equal(t, ErrExpressionProhibited, ie.Kind)
}

func TestParser_ElseWithLiteralTrueIsProhibited(t *testing.T) {
	ie := parseErr(t, "{% if x %}a{% else True %}b{% endif %}")
	require.Equal(t, ErrExpressionProhibited, ie.Kind)
}

func TestParser_ElifOutsideIf(t *testing.T) {
	ie := parseErr(t, "{% elif x %}a{% endif %}")
	require.Equal(t, ErrElifOrElseWithoutIf, ie.Kind)
}

func TestParser_IfMissingExpression(t *testing.T) {
	ie := parseErr(t, "{% if %}a{% endif %}")
	require.Equal(t, ErrExpressionMissing, ie.Kind)
}

func TestParser_ForSingleTarget(t *testing.T) {
	root := parseSrc(t, "{% for x in items %}{{ x }}{% endfor %}")
	f, ok := root.Children[0].(*ForNode)
	require.True(t, ok)
	require.Equal(t, []string{"x"}, f.Targets)
	require.Equal(t, "((x) for x in items)", f.Generator)
}

func TestParser_ForTupleTargets(t *testing.T) {
	root := parseSrc(t, "{% for k, v in pairs %}{{ k }}{% endfor %}")
	f := root.Children[0].(*ForNode)
	require.Equal(t, []string{"k", "v"}, f.Targets)
	require.Equal(t, "((k, v) for k, v in pairs)", f.Generator)
}

func TestParser_ForMissingIn(t *testing.T) {
	ie := parseErr(t, "{% for x items %}a{% endfor %}")
	require.Equal(t, ErrIncorrectForTag, ie.Kind)
}

func TestParser_ForMissingTargets(t *testing.T) {
	ie := parseErr(t, "{% for in items %}a{% endfor %}")
	require.Equal(t, ErrIncorrectForTag, ie.Kind)
}

func TestParser_WhilePlain(t *testing.T) {
	root := parseSrc(t, "{% while x %}a{% endwhile %}")
	w := root.Children[0].(*WhileNode)
	require.Equal(t, "x", w.Condition)
	require.False(t, w.DoFirst)
	require.False(t, w.Slow)
}

func TestParser_WhileDoFirst(t *testing.T) {
	root := parseSrc(t, "{% while dofirst x %}a{% endwhile %}")
	w := root.Children[0].(*WhileNode)
	require.Equal(t, "x", w.Condition)
	require.True(t, w.DoFirst)
}

func TestParser_WhileSlowSuffix(t *testing.T) {
	root := parseSrc(t, "{% while x slow %}a{% endwhile %}")
	w := root.Children[0].(*WhileNode)
	require.Equal(t, "x", w.Condition)
	require.True(t, w.Slow)
}

func TestParser_WhileDoFirstAndSlow(t *testing.T) {
	root := parseSrc(t, "{% while dofirst x slow %}a{% endwhile %}")
	w := root.Children[0].(*WhileNode)
	require.Equal(t, "x", w.Condition)
	require.True(t, w.DoFirst)
	require.True(t, w.Slow)
}

func TestParser_DefWithArgs(t *testing.T) {
	root := parseSrc(t, "{% def greet name %}hi {{ name }}{% enddef %}")
	d := root.Children[0].(*DefNode)
	require.Equal(t, "greet", d.Name)
	require.Equal(t, []string{"name"}, d.Args)
}

func TestParser_DefNoArgs(t *testing.T) {
	root := parseSrc(t, "{% def greet %}hi{% enddef %}")
	d := root.Children[0].(*DefNode)
	require.Equal(t, "greet", d.Name)
	require.Empty(t, d.Args)
}

func TestParser_DefInvalidName(t *testing.T) {
	ie := parseErr(t, "{% def 1bad %}x{% enddef %}")
	require.Equal(t, ErrInvalidDefBlockFunctionOrArgName, ie.Kind)
}

func TestParser_DefDuplicateArgName(t *testing.T) {
	ie := parseErr(t, "{% def f a a %}x{% enddef %}")
	require.Equal(t, ErrInvalidDefBlockFunctionOrArgName, ie.Kind)
}

func TestParser_CaptureValid(t *testing.T) {
	root := parseSrc(t, "{% capture out %}hi{% endcapture %}")
	c := root.Children[0].(*CaptureNode)
	require.Equal(t, "out", c.Name)
}

func TestParser_CaptureInvalidName(t *testing.T) {
	ie := parseErr(t, "{% capture 9x %}hi{% endcapture %}")
	require.Equal(t, ErrInvalidCaptureBlockVariableName, ie.Kind)
}

func TestParser_EndTagGenericMatchesAny(t *testing.T) {
	root := parseSrc(t, "{% if x %}a{% end %}")
	require.Len(t, root.Children, 1)
}

func TestParser_EndTagMismatchedName(t *testing.T) {
	ie := parseErr(t, "{% if x %}a{% endfor %}")
	require.Equal(t, ErrMismatchingEndBlockTag, ie.Kind)
}

func TestParser_UnboundEndTagAtRoot(t *testing.T) {
	ie := parseErr(t, "a{% endif %}")
	require.Equal(t, ErrUnboundEndBlockTag, ie.Kind)
}

func TestParser_UnknownTag(t *testing.T) {
	ie := parseErr(t, "{% bogus %}x{% endbogus %}")
	require.Equal(t, ErrUnknownTag, ie.Kind)
}

func TestParser_UnclosedBlockIsIncompleteAtEOF(t *testing.T) {
	ie := parseErr(t, "{% if x %}a")
	require.Equal(t, ErrIncompleteTagNode, ie.Kind)
}

func TestParser_NestedForInsideIf(t *testing.T) {
	root := parseSrc(t, "{% if x %}{% for y in ys %}{{ y }}{% endfor %}{% endif %}")
	cond := root.Children[0].(*ConditionalNode)
	require.Len(t, cond.Branches, 1)
	require.Len(t, cond.Branches[0].Children, 1)
	require.IsType(t, &ForNode{}, cond.Branches[0].Children[0])
}
