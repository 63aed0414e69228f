package internal

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Parser builds a Root/Block tree from a token stream via recursive
// descent. A conditional continuation (elif/else) inside an if body is left
// unconsumed so buildConditional can re-inspect it — no separate push-back
// cursor is needed. A named end tag that does not match the innermost open
// block raises MismatchingEndBlockTag where it is found.
type Parser struct {
	tokens []Token
	pos    int
	logger *zap.Logger
}

// NewParser builds a Parser over a token stream produced by Tokenize.
func NewParser(tokens []Token, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{tokens: tokens, logger: logger}
}

// Parse assembles the full tree, or returns the first structural error.
func (p *Parser) Parse() (*RootNode, error) {
	p.logger.Debug("parsing started", zap.Int("tokenCount", len(p.tokens)))
	children, err := p.parseBody("")
	if err != nil {
		return nil, err
	}
	p.logger.Debug("parsing finished", zap.Int("rootChildren", len(children)))
	return &RootNode{Children: children}, nil
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

// parseBody consumes tokens into a child list until it finds the end tag
// that closes kindName ("" means the root, which is closed only by EOF).
// A named end tag that does not match kindName raises
// MismatchingEndBlockTag, and any end tag at the root raises
// UnboundEndBlockTag. An elif/else is left unconsumed when kindName is "if",
// for the calling buildConditional to pick up; anywhere else it raises
// ElifOrElseWithoutIf.
func (p *Parser) parseBody(kindName string) ([]Node, error) {
	var children []Node

	for {
		tok := p.peek()
		if tok.IsEOF() {
			if kindName == "" {
				return children, nil
			}
			return nil, NewIncompleteTagNodeError("{%", "%}", tok.Pos)
		}

		if tok.Type != TokenBlock {
			p.advance()
			switch tok.Type {
			case TokenText:
				children = append(children, &TextNode{Position: tok.Pos, Content: tok.Value})
			case TokenCode:
				children = append(children, &CodeNode{Position: tok.Pos, Body: strings.TrimSpace(tok.Value)})
			case TokenComment:
				// comments append nothing to the tree (spec.md §4.2.2)
			}
			continue
		}

		body := strings.TrimSpace(tok.Value)

		if tagToEnd, isEnd := matchEndTag(body); isEnd {
			if kindName == "" {
				return nil, NewUnboundEndBlockTagError(body, tok.Pos)
			}
			if tagToEnd != "" && tagToEnd != kindName {
				return nil, NewMismatchingEndBlockTagError(kindName, tagToEnd, tok.Pos)
			}
			p.advance()
			return children, nil
		}

		if _, _, _, isCont := matchConditionalContinuation(body); isCont {
			if kindName != "if" {
				return nil, NewElifOrElseWithoutIfError(tok.Pos)
			}
			return children, nil
		}

		node, err := p.buildBlock(body, tok)
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}
}

// buildBlock classifies and builds every block kind except End and
// conditional continuations, which parseBody handles directly.
func (p *Parser) buildBlock(body string, tok Token) (Node, error) {
	switch {
	case body == "comment":
		p.advance()
		children, err := p.parseBody("comment")
		if err != nil {
			return nil, err
		}
		return &CommentBlockNode{Position: tok.Pos, Children: children}, nil

	default:
		if rest, ok := splitTag(body, "if"); ok {
			p.advance()
			if rest == "" {
				return nil, NewExpressionMissingError("if", tok.Pos)
			}
			return p.buildConditional(CondIf, rest, tok.Pos)
		}
		if rest, ok := splitTag(body, "for"); ok {
			p.advance()
			return p.buildFor(body, rest, tok.Pos)
		}
		if rest, ok := splitTag(body, "while"); ok {
			p.advance()
			return p.buildWhile(rest, tok.Pos)
		}
		if rest, ok := splitTag(body, "def"); ok {
			p.advance()
			return p.buildDef(rest, tok.Pos)
		}
		if rest, ok := splitTag(body, "capture"); ok {
			p.advance()
			return p.buildCapture(rest, tok.Pos)
		}
		return nil, NewUnknownTagError(body, tok.Pos)
	}
}

// buildConditional parses an if/elif*/else? chain into one ConditionalNode.
func (p *Parser) buildConditional(kind ConditionalKind, expr string, pos Position) (*ConditionalNode, error) {
	node := &ConditionalNode{Position: pos}
	curKind, curExpr, curPos := kind, expr, pos

	for {
		children, err := p.parseBody("if")
		if err != nil {
			return nil, err
		}
		node.Branches = append(node.Branches, ConditionalBranch{
			Kind: curKind, Expression: curExpr, Children: children, Pos: curPos,
		})
		if curKind == CondElse {
			return node, nil
		}

		tok := p.peek()
		if tok.Type != TokenBlock {
			return node, nil
		}
		body := strings.TrimSpace(tok.Value)
		k, raw, hasRaw, isCont := matchConditionalContinuation(body)
		if !isCont {
			return node, nil
		}
		p.advance()

		switch k {
		case CondElif:
			if !hasRaw || strings.TrimSpace(raw) == "" {
				return nil, NewExpressionMissingError("elif", tok.Pos)
			}
			curKind, curExpr, curPos = CondElif, strings.TrimSpace(raw), tok.Pos
		case CondElse:
			if hasRaw && strings.TrimSpace(raw) != "" {
				return nil, NewExpressionProhibitedError("else", tok.Pos)
			}
			curKind, curExpr, curPos = CondElse, "True", tok.Pos
		}
	}
}

// buildFor extracts for-loop targets and rewrites the generator expression
// per the for-tag rewrite rule (spec.md §4.2.1).
func (p *Parser) buildFor(fullBody, afterFor string, pos Position) (*ForNode, error) {
	fields := strings.Fields(afterFor)
	inIdx := -1
	for i, f := range fields {
		if f == "in" {
			inIdx = i
			break
		}
	}
	if inIdx <= 0 {
		return nil, NewIncorrectForTagError(fullBody, pos)
	}

	targets := extractIdentifiers(strings.Join(fields[:inIdx], " "))
	if len(targets) == 0 {
		return nil, NewIncorrectForTagError(fullBody, pos)
	}

	generator := "((" + strings.Join(targets, ", ") + ") " + fullBody + ")"

	children, err := p.parseBody("for")
	if err != nil {
		return nil, err
	}
	return &ForNode{Position: pos, Targets: targets, Generator: generator, Children: children}, nil
}

// buildWhile strips the dofirst/slow modifiers and extracts the condition.
func (p *Parser) buildWhile(rest string, pos Position) (*WhileNode, error) {
	dofirst := false
	slow := false

	if rest == "dofirst" {
		dofirst = true
		rest = ""
	} else if r, ok := splitTag(rest, "dofirst"); ok {
		dofirst = true
		rest = r
	}

	if rest == "slow" {
		slow = true
		rest = ""
	} else if strings.HasSuffix(rest, " slow") {
		slow = true
		rest = strings.TrimSpace(strings.TrimSuffix(rest, " slow"))
	}

	children, err := p.parseBody("while")
	if err != nil {
		return nil, err
	}
	return &WhileNode{Position: pos, Condition: rest, DoFirst: dofirst, Slow: slow, Children: children}, nil
}

// buildDef validates the function and argument names and parses the body.
func (p *Parser) buildDef(rest string, pos Position) (*DefNode, error) {
	parts := strings.Fields(rest)
	if len(parts) == 0 {
		return nil, NewInvalidDefBlockFunctionOrArgNameError("", pos)
	}
	name := parts[0]
	if !isIdentifier(name) {
		return nil, NewInvalidDefBlockFunctionOrArgNameError(name, pos)
	}

	args := parts[1:]
	seen := map[string]bool{name: true}
	for _, a := range args {
		if !isIdentifier(a) || seen[a] {
			return nil, NewInvalidDefBlockFunctionOrArgNameError(a, pos)
		}
		seen[a] = true
	}

	children, err := p.parseBody("def")
	if err != nil {
		return nil, err
	}
	return &DefNode{Position: pos, Name: name, Args: args, Children: children}, nil
}

// buildCapture validates the capture variable name and parses the body.
func (p *Parser) buildCapture(rest string, pos Position) (*CaptureNode, error) {
	name := strings.TrimSpace(rest)
	if !isIdentifier(name) {
		return nil, NewInvalidCaptureBlockVariableNameError(name, pos)
	}

	children, err := p.parseBody("capture")
	if err != nil {
		return nil, err
	}
	return &CaptureNode{Position: pos, Name: name, Children: children}, nil
}

// splitTag reports whether body is exactly keyword, or keyword followed by
// a space, returning the (possibly empty) trimmed remainder.
func splitTag(body, keyword string) (rest string, ok bool) {
	if body == keyword {
		return "", true
	}
	if strings.HasPrefix(body, keyword+" ") {
		return strings.TrimSpace(body[len(keyword)+1:]), true
	}
	return "", false
}

// matchEndTag reports whether body denotes an End tag: empty, or starting
// with "end". tagToEnd is the (possibly empty, meaning generic) remainder.
func matchEndTag(body string) (tagToEnd string, isEnd bool) {
	if body == "" {
		return "", true
	}
	if body == "end" {
		return "", true
	}
	if rest, ok := splitTag(body, "end"); ok {
		return rest, true
	}
	if strings.HasPrefix(body, "end") {
		return strings.TrimSpace(body[len("end"):]), true
	}
	return "", false
}

// matchConditionalContinuation reports whether body is an elif/else tag.
func matchConditionalContinuation(body string) (kind ConditionalKind, raw string, hasRaw bool, isCont bool) {
	if body == "else" {
		return CondElse, "", false, true
	}
	if rest, ok := splitTag(body, "else"); ok {
		return CondElse, rest, true, true
	}
	if body == "elif" {
		return CondElif, "", false, true
	}
	if rest, ok := splitTag(body, "elif"); ok {
		return CondElif, rest, true, true
	}
	return 0, "", false, false
}

// extractIdentifiers pulls identifier-shaped runs out of s (discarding
// commas and other junk), deduplicating while preserving first-occurrence
// order — the order for-loop positional binding depends on.
func extractIdentifiers(s string) []string {
	var out []string
	seen := make(map[string]bool)
	var cur strings.Builder

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		name := cur.String()
		cur.Reset()
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

// isIdentifier reports whether s is a valid host-language identifier:
// starts with a letter or underscore, continues with letters/digits/underscore.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if r != '_' && !unicode.IsLetter(r) {
				return false
			}
			continue
		}
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
