package internal

import "fmt"

// ErrorKind enumerates the lex/parse/exec failure kinds named in the
// component design. The public bamboo package translates each kind into a
// structured cuserr error at the API boundary.
type ErrorKind int

const (
	ErrIncompleteTagNode ErrorKind = iota
	ErrMultiLineBlockTag
	ErrUnknownTag
	ErrExpressionMissing
	ErrExpressionProhibited
	ErrIncorrectForTag
	ErrInvalidCaptureBlockVariableName
	ErrInvalidDefBlockFunctionOrArgName
	ErrInvalidDefBlockMismatchingArgCount
	ErrElifOrElseWithoutIf
	ErrUnboundEndBlockTag
	ErrMismatchingEndBlockTag
	ErrHost
)

// Error is the internal pipeline's single error type. Every lex/parse/exec
// failure constructs one of these; the root package maps Kind to the
// matching public constructor in bamboo.errors.go.
type Error struct {
	Kind ErrorKind
	Pos  Position

	Opener  string
	Closer  string
	TagBody string
	TagName string
	Name    string

	Expected  string
	Found     string
	ExpectedN int
	FoundN    int

	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s at %s: %v", e.Kind, e.Pos, e.Cause)
	}
	return fmt.Sprintf("%s at %s", e.Kind, e.Pos)
}

func (e *Error) Unwrap() error { return e.Cause }

func (k ErrorKind) String() string {
	switch k {
	case ErrIncompleteTagNode:
		return "IncompleteTagNode"
	case ErrMultiLineBlockTag:
		return "MultiLineBlockTag"
	case ErrUnknownTag:
		return "UnknownTag"
	case ErrExpressionMissing:
		return "ExpressionMissing"
	case ErrExpressionProhibited:
		return "ExpressionProhibited"
	case ErrIncorrectForTag:
		return "IncorrectForTag"
	case ErrInvalidCaptureBlockVariableName:
		return "InvalidCaptureBlockVariableName"
	case ErrInvalidDefBlockFunctionOrArgName:
		return "InvalidDefBlockFunctionOrArgName"
	case ErrInvalidDefBlockMismatchingArgCount:
		return "InvalidDefBlockMismatchingArgCount"
	case ErrElifOrElseWithoutIf:
		return "ElifOrElseWithoutIf"
	case ErrUnboundEndBlockTag:
		return "UnboundEndBlockTag"
	case ErrMismatchingEndBlockTag:
		return "MismatchingEndBlockTag"
	case ErrHost:
		return "HostError"
	default:
		return "Unknown"
	}
}

// NewIncompleteTagNodeError reports a tag opened but never closed before EOF.
func NewIncompleteTagNodeError(opener, closer string, pos Position) error {
	return &Error{Kind: ErrIncompleteTagNode, Opener: opener, Closer: closer, Pos: pos}
}

// NewMultiLineBlockTagError reports a {% ... %} body spanning a newline.
func NewMultiLineBlockTagError(pos Position) error {
	return &Error{Kind: ErrMultiLineBlockTag, Pos: pos}
}

// NewUnknownTagError reports a block tag body the parser cannot classify.
func NewUnknownTagError(tagBody string, pos Position) error {
	return &Error{Kind: ErrUnknownTag, TagBody: tagBody, Pos: pos}
}

// NewExpressionMissingError reports an if/elif with an empty expression.
func NewExpressionMissingError(tagName string, pos Position) error {
	return &Error{Kind: ErrExpressionMissing, TagName: tagName, Pos: pos}
}

// NewExpressionProhibitedError reports an else carrying any expression.
func NewExpressionProhibitedError(tagName string, pos Position) error {
	return &Error{Kind: ErrExpressionProhibited, TagName: tagName, Pos: pos}
}

// NewIncorrectForTagError reports a for tag with no extractable targets.
func NewIncorrectForTagError(tagBody string, pos Position) error {
	return &Error{Kind: ErrIncorrectForTag, TagBody: tagBody, Pos: pos}
}

// NewInvalidCaptureBlockVariableNameError reports a non-identifier capture name.
func NewInvalidCaptureBlockVariableNameError(name string, pos Position) error {
	return &Error{Kind: ErrInvalidCaptureBlockVariableName, Name: name, Pos: pos}
}

// NewInvalidDefBlockFunctionOrArgNameError reports a non-identifier def name or arg.
func NewInvalidDefBlockFunctionOrArgNameError(name string, pos Position) error {
	return &Error{Kind: ErrInvalidDefBlockFunctionOrArgName, Name: name, Pos: pos}
}

// NewInvalidDefBlockMismatchingArgCountError reports a def call with the wrong arity.
func NewInvalidDefBlockMismatchingArgCountError(name string, expected, found int) error {
	return &Error{Kind: ErrInvalidDefBlockMismatchingArgCount, Name: name, ExpectedN: expected, FoundN: found}
}

// NewElifOrElseWithoutIfError reports an elif/else with no preceding if.
func NewElifOrElseWithoutIfError(pos Position) error {
	return &Error{Kind: ErrElifOrElseWithoutIf, Pos: pos}
}

// NewUnboundEndBlockTagError reports an end tag with nothing open to close.
func NewUnboundEndBlockTagError(tagBody string, pos Position) error {
	return &Error{Kind: ErrUnboundEndBlockTag, TagBody: tagBody, Pos: pos}
}

// NewMismatchingEndBlockTagError reports a named end tag that does not match
// the kind of block it would close.
func NewMismatchingEndBlockTagError(expected, found string, pos Position) error {
	return &Error{Kind: ErrMismatchingEndBlockTag, Expected: expected, Found: found, Pos: pos}
}

// NewHostError wraps a failure raised by the host language interpreter.
func NewHostError(cause error) error {
	return &Error{Kind: ErrHost, Cause: cause}
}
