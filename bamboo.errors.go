package bamboo

import (
	"strconv"

	"github.com/itsatony/go-cuserr"
)

// Error message constants.
const (
	ErrMsgIncompleteTagNode        = "tag was not closed before end of input"
	ErrMsgMultiLineBlockTag        = "block tag body must not contain a newline"
	ErrMsgUnknownTag               = "unrecognized block tag"
	ErrMsgExpressionMissing        = "tag requires an expression but none was given"
	ErrMsgExpressionProhibited     = "tag does not accept an expression"
	ErrMsgIncorrectForTag          = "for tag is missing loop targets"
	ErrMsgInvalidCaptureVarName    = "capture variable name is not a valid identifier"
	ErrMsgInvalidDefName            = "def function or argument name is not a valid identifier"
	ErrMsgInvalidDefArgCount       = "def call argument count does not match declaration"
	ErrMsgElifOrElseWithoutIf      = "elif or else has no preceding if"
	ErrMsgUnboundEndBlockTag       = "end tag has no open block to close"
	ErrMsgMismatchingEndBlockTag   = "end tag does not match the open block"
	ErrMsgHostError                = "host language evaluation failed"
	ErrMsgFuncRegistration         = "function registration failed"
)

// Error code constants, read from a *cuserr.CustomError's Code field after
// errors.As.
const (
	ErrCodeLex   = "BAMBOO_LEX"
	ErrCodeParse = "BAMBOO_PARSE"
	ErrCodeExec  = "BAMBOO_EXEC"
	ErrCodeHost  = "BAMBOO_HOST"
)

// Metadata keys attached to errors via WithMetadata.
const (
	MetaKeyLine     = "line"
	MetaKeyColumn   = "column"
	MetaKeyOffset   = "offset"
	MetaKeyOpener   = "opener"
	MetaKeyCloser   = "closer"
	MetaKeyTagBody  = "tag_body"
	MetaKeyTagName  = "tag_name"
	MetaKeyName     = "name"
	MetaKeyExpected = "expected"
	MetaKeyFound    = "found"
)

// Position locates a byte in the source, used for diagnostics on every
// error kind in this file.
type Position struct {
	Offset int
	Line   int
	Column int
}

func withPos(err *cuserr.CustomError, pos Position) *cuserr.CustomError {
	return err.
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column)).
		WithMetadata(MetaKeyOffset, strconv.Itoa(pos.Offset))
}

// NewIncompleteTagNodeError reports a tag opened but never closed before EOF.
func NewIncompleteTagNodeError(opener, closer string, pos Position) error {
	err := cuserr.NewValidationError(ErrCodeLex, ErrMsgIncompleteTagNode).
		WithMetadata(MetaKeyOpener, opener).
		WithMetadata(MetaKeyCloser, closer)
	return withPos(err, pos)
}

// NewMultiLineBlockTagError reports a {% ... %} tag whose body spans lines.
func NewMultiLineBlockTagError(pos Position) error {
	err := cuserr.NewValidationError(ErrCodeLex, ErrMsgMultiLineBlockTag)
	return withPos(err, pos)
}

// NewUnknownTagError reports a block tag body the parser cannot classify.
func NewUnknownTagError(tagBody string, pos Position) error {
	err := cuserr.NewValidationError(ErrCodeParse, ErrMsgUnknownTag).
		WithMetadata(MetaKeyTagBody, tagBody)
	return withPos(err, pos)
}

// NewExpressionMissingError reports an if/elif with an empty expression.
func NewExpressionMissingError(tagName string, pos Position) error {
	err := cuserr.NewValidationError(ErrCodeParse, ErrMsgExpressionMissing).
		WithMetadata(MetaKeyTagName, tagName)
	return withPos(err, pos)
}

// NewExpressionProhibitedError reports an else carrying any expression.
func NewExpressionProhibitedError(tagName string, pos Position) error {
	err := cuserr.NewValidationError(ErrCodeParse, ErrMsgExpressionProhibited).
		WithMetadata(MetaKeyTagName, tagName)
	return withPos(err, pos)
}

// NewIncorrectForTagError reports a for tag with no extractable targets.
func NewIncorrectForTagError(tagBody string, pos Position) error {
	err := cuserr.NewValidationError(ErrCodeParse, ErrMsgIncorrectForTag).
		WithMetadata(MetaKeyTagBody, tagBody)
	return withPos(err, pos)
}

// NewInvalidCaptureBlockVariableNameError reports a non-identifier capture name.
func NewInvalidCaptureBlockVariableNameError(name string, pos Position) error {
	err := cuserr.NewValidationError(ErrCodeParse, ErrMsgInvalidCaptureVarName).
		WithMetadata(MetaKeyName, name)
	return withPos(err, pos)
}

// NewInvalidDefBlockFunctionOrArgNameError reports a non-identifier def name or arg.
func NewInvalidDefBlockFunctionOrArgNameError(name string, pos Position) error {
	err := cuserr.NewValidationError(ErrCodeParse, ErrMsgInvalidDefName).
		WithMetadata(MetaKeyName, name)
	return withPos(err, pos)
}

// NewInvalidDefBlockMismatchingArgCountError reports a def call with the wrong arity.
func NewInvalidDefBlockMismatchingArgCountError(name string, expected, found int) error {
	return cuserr.NewValidationError(ErrCodeExec, ErrMsgInvalidDefArgCount).
		WithMetadata(MetaKeyName, name).
		WithMetadata(MetaKeyExpected, strconv.Itoa(expected)).
		WithMetadata(MetaKeyFound, strconv.Itoa(found))
}

// NewElifOrElseWithoutIfError reports an elif/else with no preceding if.
func NewElifOrElseWithoutIfError(pos Position) error {
	err := cuserr.NewValidationError(ErrCodeParse, ErrMsgElifOrElseWithoutIf)
	return withPos(err, pos)
}

// NewUnboundEndBlockTagError reports an end tag with nothing open to close.
func NewUnboundEndBlockTagError(tagBody string, pos Position) error {
	err := cuserr.NewValidationError(ErrCodeParse, ErrMsgUnboundEndBlockTag).
		WithMetadata(MetaKeyTagBody, tagBody)
	return withPos(err, pos)
}

// NewMismatchingEndBlockTagError reports a named end tag that does not match
// the kind of the block it would close.
func NewMismatchingEndBlockTagError(expected, found string, pos Position) error {
	err := cuserr.NewValidationError(ErrCodeParse, ErrMsgMismatchingEndBlockTag).
		WithMetadata(MetaKeyExpected, expected).
		WithMetadata(MetaKeyFound, found)
	return withPos(err, pos)
}

// NewHostError wraps a failure raised by the host language interpreter.
func NewHostError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeHost, ErrMsgHostError)
}

// NewFuncRegistrationError reports a WithFunc name collision at engine
// construction time.
func NewFuncRegistrationError(name string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeExec, ErrMsgFuncRegistration).
		WithMetadata(MetaKeyName, name)
}
