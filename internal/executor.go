package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abend/bamboo/internal/expr"
	"github.com/abend/bamboo/internal/funcs"
)

const (
	maxWhileIterations = 10000
	maxWhileDuration   = 2 * time.Second
)

// Clock abstracts time.Now so the while-loop guard is deterministic under test.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Executor walks a parsed tree, evaluating Code/Block nodes against a host
// Env via the expr package and composing the result with literal text in
// source order (spec.md §4.3).
type Executor struct {
	env       *Env
	evaluator *expr.Evaluator
	registry  *funcs.Registry
	logger    *zap.Logger
	clock     Clock
	maxDepth  int
	callDepth int
	stderr    io.Writer
}

// NewExecutor builds an Executor bound to env. A nil registry falls back to
// the builtin-only registry; a nil clock uses real wall-clock time; a nil
// stderr falls back to os.Stderr. maxDepth bounds how deeply a def-bound
// function may call into other def-bound functions (including itself); 0 or
// negative means unbounded.
func NewExecutor(env *Env, registry *funcs.Registry, logger *zap.Logger, clock Clock, maxDepth int, stderr io.Writer) *Executor {
	if registry == nil {
		registry = funcs.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = realClock{}
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	resolve := func(name string) (expr.Callable, bool) { return registry.Get(name) }
	return &Executor{
		env:       env,
		evaluator: expr.NewEvaluator(env, resolve),
		registry:  registry,
		logger:    logger,
		clock:     clock,
		maxDepth:  maxDepth,
		stderr:    stderr,
	}
}

// Execute renders root to its final text form.
func (ex *Executor) Execute(root *RootNode) (string, error) {
	var out strings.Builder
	if err := ex.execNodes(root.Children, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (ex *Executor) execNodes(nodes []Node, out *strings.Builder) error {
	for _, n := range nodes {
		if err := ex.execNode(n, out); err != nil {
			return err
		}
	}
	return nil
}

func (ex *Executor) execNode(n Node, out *strings.Builder) error {
	switch node := n.(type) {
	case *TextNode:
		out.WriteString(node.Content)
		return nil
	case *CodeNode:
		return ex.execCode(node, out)
	case *CommentNode:
		return nil
	case *CommentBlockNode:
		return nil
	case *ConditionalNode:
		return ex.execConditional(node, out)
	case *ForNode:
		return ex.execFor(node, out)
	case *WhileNode:
		return ex.execWhile(node, out)
	case *DefNode:
		return ex.execDef(node)
	case *CaptureNode:
		return ex.execCapture(node, out)
	default:
		return fmt.Errorf("internal: unexpected node type %T", n)
	}
}

// wrapEvaluatorErr propagates a structured *Error unchanged — typically an
// arity-mismatch or other internal failure surfaced by a def-bound callable
// invoked from within a host expression — and only falls back to a generic
// ErrHost for errors the host language itself raised (division by zero,
// unbound name, type mismatch, and so on).
func wrapEvaluatorErr(err error) error {
	var ie *Error
	if errors.As(err, &ie) {
		return ie
	}
	return NewHostError(err)
}

// execCode implements spec.md §4.3.1: try the body as an expression first;
// on failure, retry as a no-value statement sequence; if both fail, the
// expression error is the one surfaced (it is usually the more specific of
// the two for a template author who meant to substitute a value).
func (ex *Executor) execCode(n *CodeNode, out *strings.Builder) error {
	v, exprErr := ex.evaluator.EvalString(n.Body)
	if exprErr == nil {
		out.WriteString(expr.Stringify(v))
		return nil
	}
	if execErr := ex.evaluator.Exec(n.Body); execErr == nil {
		return nil
	}
	ex.logger.Debug("code tag failed as both expression and statement sequence",
		zap.String("body", n.Body), zap.Error(exprErr))
	return wrapEvaluatorErr(exprErr)
}

// execConditional renders exactly one branch: the first whose expression
// is truthy (spec.md §4.3.3).
func (ex *Executor) execConditional(n *ConditionalNode, out *strings.Builder) error {
	for _, branch := range n.Branches {
		truthy, err := ex.evaluator.EvalBool(branch.Expression)
		if err != nil {
			return wrapEvaluatorErr(err)
		}
		if truthy {
			return ex.execNodes(branch.Children, out)
		}
	}
	return nil
}

// execFor implements backup/bind/iterate/unbind/restore over the host's
// generator-expression iterator (spec.md §4.3.2).
func (ex *Executor) execFor(n *ForNode, out *strings.Builder) error {
	// Backup must precede Iterate: evaluating the generator expression
	// already binds the target names (it renders the element expression
	// once per item while computing the iterator), so snapshotting after
	// would capture the generator's own last write instead of whatever
	// was bound before the loop.
	backup := ex.env.Backup(n.Targets)
	defer ex.env.Restore(backup)

	items, err := ex.evaluator.Iterate(n.Generator)
	if err != nil {
		return wrapEvaluatorErr(err)
	}

	for _, item := range items {
		vals, err := expr.Unpack(item, len(n.Targets))
		if err != nil {
			return wrapEvaluatorErr(err)
		}
		for i, t := range n.Targets {
			ex.env.Set(t, vals[i])
		}
		if err := ex.execNodes(n.Children, out); err != nil {
			return err
		}
	}
	return nil
}

// execWhile implements the dofirst/slow-modulated while loop with its
// guard against runaway host conditions (spec.md §4.3.4): 10,000
// iterations or 2 seconds wall-clock, whichever trips first, unless the
// tag carries the slow modifier.
func (ex *Executor) execWhile(n *WhileNode, out *strings.Builder) error {
	start := ex.clock.Now()
	iterations := 0

	runBody := func() error {
		if err := ex.execNodes(n.Children, out); err != nil {
			return err
		}
		iterations++
		return nil
	}

	if n.DoFirst {
		if err := runBody(); err != nil {
			return err
		}
	}

	for {
		truthy, err := ex.evaluator.EvalBool(n.Condition)
		if err != nil {
			return wrapEvaluatorErr(err)
		}
		if !truthy {
			return nil
		}
		if err := runBody(); err != nil {
			return err
		}
		if !n.Slow {
			if iterations >= maxWhileIterations {
				ex.reportWhileTerminated(n.Condition, "iteration guard tripped", zap.Int("iterations", iterations))
				return nil
			}
			if ex.clock.Now().Sub(start) >= maxWhileDuration {
				ex.reportWhileTerminated(n.Condition, "time guard tripped", zap.Duration("elapsed", ex.clock.Now().Sub(start)))
				return nil
			}
		}
	}
}

// reportWhileTerminated implements spec.md's External Interfaces diagnostic
// contract: a single line of the form "Loop '<condition>' terminated." on
// the configured stderr stream, in addition to the structured zap record
// for whoever has wired a real logger.
func (ex *Executor) reportWhileTerminated(condition, reason string, fields ...zap.Field) {
	fmt.Fprintf(ex.stderr, "Loop '%s' terminated.\n", condition)
	ex.logger.Warn("while loop stopped: "+reason, append(fields, zap.String("condition", condition))...)
}

// execDef binds a callable into the environment; the def tag itself emits
// no output (spec.md §4.3.6).
func (ex *Executor) execDef(n *DefNode) error {
	ex.env.Set(n.Name, ex.makeDefCallable(n))
	return nil
}

func (ex *Executor) makeDefCallable(n *DefNode) expr.Callable {
	return expr.CallableFunc(func(args []any) (any, error) {
		if len(args) != len(n.Args) {
			return nil, NewInvalidDefBlockMismatchingArgCountError(n.Name, len(n.Args), len(args))
		}
		if ex.maxDepth > 0 && ex.callDepth >= ex.maxDepth {
			return nil, NewHostError(fmt.Errorf("def %q exceeded maximum call depth %d", n.Name, ex.maxDepth))
		}
		ex.callDepth++
		defer func() { ex.callDepth-- }()

		backup := ex.env.Backup(n.Args)
		defer ex.env.Restore(backup)
		for i, a := range n.Args {
			ex.env.Set(a, args[i])
		}
		var buf strings.Builder
		if err := ex.execNodes(n.Children, &buf); err != nil {
			return nil, err
		}
		return buf.String(), nil
	})
}

// execCapture renders children into a buffer and binds the result under
// Name (spec.md §4.3.5).
func (ex *Executor) execCapture(n *CaptureNode, out *strings.Builder) error {
	var buf strings.Builder
	if err := ex.execNodes(n.Children, &buf); err != nil {
		return err
	}
	ex.env.Set(n.Name, buf.String())
	return nil
}
