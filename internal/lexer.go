package internal

import (
	"strings"

	"go.uber.org/zap"
)

// Delimiters, fixed per the component design: two characters each, never
// configurable at runtime.
const (
	openCode  = "{{"
	closeCode = "}}"
	openComm  = "{#"
	closeComm = "#}"
	openBlock = "{%"
	closeBlock = "%}"
)

// Lexer segments template source into a flat stream of Text/Code/Comment/
// Block tokens. It performs a single left-to-right scan; there is no
// backtracking once a delimiter pair has been matched.
type Lexer struct {
	source string
	pos    int
	line   int
	column int
	logger *zap.Logger
}

// NewLexer builds a Lexer over source. A nil logger is replaced with a no-op.
func NewLexer(source string, logger *zap.Logger) *Lexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lexer{source: source, pos: 0, line: 1, column: 1, logger: logger}
}

// Tokenize runs the full scan, returning the token stream or the first
// lexing error encountered. Empty Text tokens are pruned before return.
func (l *Lexer) Tokenize() ([]Token, error) {
	l.logger.Debug("lexing started", zap.Int("sourceLen", len(l.source)))

	var tokens []Token
	for !l.isAtEnd() {
		switch {
		case l.matchStr(openCode):
			tok, err := l.scanDelimited(TokenCode, openCode, closeCode, true, false)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		case l.matchStr(openComm):
			tok, err := l.scanComment()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		case l.matchStr(openBlock):
			tok, err := l.scanDelimited(TokenBlock, openBlock, closeBlock, true, true)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		default:
			tokens = append(tokens, l.scanText())
		}
	}

	pruned := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Type == TokenText && t.Value == "" {
			continue
		}
		pruned = append(pruned, t)
	}

	l.logger.Debug("lexing finished", zap.Int("tokenCount", len(pruned)))
	return pruned, nil
}

// scanText consumes literal text up to (but excluding) the next opener.
func (l *Lexer) scanText() Token {
	start := l.currentPosition()
	var sb strings.Builder
	for !l.isAtEnd() && !l.matchStr(openCode) && !l.matchStr(openComm) && !l.matchStr(openBlock) {
		sb.WriteByte(l.source[l.pos])
		l.advance()
	}
	return newToken(TokenText, sb.String(), start)
}

// scanDelimited consumes a Code or Block tag body. singleLine enforces the
// block-tags-are-single-line rule; escapes handles \{ and \} unescaping.
func (l *Lexer) scanDelimited(typ TokenType, opener, closer string, escapes, singleLine bool) (Token, error) {
	start := l.currentPosition()
	l.advanceN(len(opener))

	var sb strings.Builder
	for {
		if l.isAtEnd() {
			return Token{}, NewIncompleteTagNodeError(opener, closer, start)
		}
		if singleLine && l.source[l.pos] == '\n' {
			return Token{}, NewMultiLineBlockTagError(start)
		}
		if escapes && l.matchStr(`\{`) {
			sb.WriteByte('{')
			l.advanceN(2)
			continue
		}
		if escapes && l.matchStr(`\}`) {
			sb.WriteByte('}')
			l.advanceN(2)
			continue
		}
		if l.matchStr(closer) {
			l.advanceN(len(closer))
			break
		}
		sb.WriteByte(l.source[l.pos])
		l.advance()
	}

	return newToken(typ, sb.String(), start), nil
}

// scanComment consumes a Comment tag body, tracking nested-comment depth so
// that `{# a {# b #} c #}` closes at the outermost `#}`.
func (l *Lexer) scanComment() (Token, error) {
	start := l.currentPosition()
	l.advanceN(len(openComm))

	depth := 1
	var sb strings.Builder
	for {
		if l.isAtEnd() {
			return Token{}, NewIncompleteTagNodeError(openComm, closeComm, start)
		}
		if l.matchStr(openComm) {
			depth++
			sb.WriteString(openComm)
			l.advanceN(len(openComm))
			continue
		}
		if l.matchStr(closeComm) {
			depth--
			l.advanceN(len(closeComm))
			if depth == 0 {
				break
			}
			sb.WriteString(closeComm)
			continue
		}
		sb.WriteByte(l.source[l.pos])
		l.advance()
	}

	return newToken(TokenComment, sb.String(), start), nil
}

func (l *Lexer) currentPosition() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.column}
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func (l *Lexer) matchStr(s string) bool {
	if l.pos+len(s) > len(l.source) {
		return false
	}
	return l.source[l.pos:l.pos+len(s)] == s
}

// advance moves the cursor one byte, tracking line/column.
func (l *Lexer) advance() {
	if l.isAtEnd() {
		return
	}
	if l.source[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}
