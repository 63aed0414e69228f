package bamboo

import "github.com/abend/bamboo/internal"

// translateError converts the internal pipeline's single error type into
// the matching public, cuserr-wrapped constructor, so callers outside this
// module only ever see bamboo.Err* codes and never internal.ErrorKind.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	ie, ok := err.(*internal.Error)
	if !ok {
		return err
	}

	pos := Position{Offset: ie.Pos.Offset, Line: ie.Pos.Line, Column: ie.Pos.Column}

	switch ie.Kind {
	case internal.ErrIncompleteTagNode:
		return NewIncompleteTagNodeError(ie.Opener, ie.Closer, pos)
	case internal.ErrMultiLineBlockTag:
		return NewMultiLineBlockTagError(pos)
	case internal.ErrUnknownTag:
		return NewUnknownTagError(ie.TagBody, pos)
	case internal.ErrExpressionMissing:
		return NewExpressionMissingError(ie.TagName, pos)
	case internal.ErrExpressionProhibited:
		return NewExpressionProhibitedError(ie.TagName, pos)
	case internal.ErrIncorrectForTag:
		return NewIncorrectForTagError(ie.TagBody, pos)
	case internal.ErrInvalidCaptureBlockVariableName:
		return NewInvalidCaptureBlockVariableNameError(ie.Name, pos)
	case internal.ErrInvalidDefBlockFunctionOrArgName:
		return NewInvalidDefBlockFunctionOrArgNameError(ie.Name, pos)
	case internal.ErrInvalidDefBlockMismatchingArgCount:
		return NewInvalidDefBlockMismatchingArgCountError(ie.Name, ie.ExpectedN, ie.FoundN)
	case internal.ErrElifOrElseWithoutIf:
		return NewElifOrElseWithoutIfError(pos)
	case internal.ErrUnboundEndBlockTag:
		return NewUnboundEndBlockTagError(ie.TagBody, pos)
	case internal.ErrMismatchingEndBlockTag:
		return NewMismatchingEndBlockTagError(ie.Expected, ie.Found, pos)
	case internal.ErrHost:
		return NewHostError(ie.Cause)
	default:
		return err
	}
}
