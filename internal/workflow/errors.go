package workflow

import (
	"errors"
	"fmt"
)

// User-facing messages.
const (
	MsgInvalidPDF    = "Please select a valid PDF file"
	MsgSelectFile    = "Please select a PDF file"
	MsgSelectBoth    = "Please select both PDF files"
	MsgUnreadable    = "Could not read PDF. Make sure it's a valid file."
	MsgSelectPage    = "Please select at least one page."
	MsgMergeFailed   = "Failed to merge PDFs. Please make sure both files are valid PDF documents."
	MsgSplitFailed   = "Failed to split PDF. Please make sure the file is valid."
	MsgInvalidMode   = "Please choose a split mode: extract, range or every"
	MsgPageOutOfSpan = "That page is not in the selected file"
	MsgBadPageList   = "Pages must look like 1,3,5-7"
)

// InputValidationError is raised for wrong file types, missing inputs or bad
// selections, before any decode attempt.
type InputValidationError struct {
	Field   string
	Message string
}

func (e *InputValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *InputValidationError) UserMessage() string { return e.Message }

// DecodeError wraps a failure to read source bytes as a PDF.
type DecodeError struct {
	File string
	Err  error
}

func (e *DecodeError) Error() string       { return fmt.Sprintf("decode %q: %v", e.File, e.Err) }
func (e *DecodeError) Unwrap() error       { return e.Err }
func (e *DecodeError) UserMessage() string { return MsgUnreadable }

// EmptySelectionError means a plan resolved to zero pages.
type EmptySelectionError struct {
	Mode Mode
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("empty selection in %s mode", e.Mode)
}

func (e *EmptySelectionError) UserMessage() string { return MsgSelectPage }

// SerializationError covers page copy and output encoding failures. It is
// fatal to the operation only.
type SerializationError struct {
	Output string
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("assemble %q: %v", e.Output, e.Err)
}
func (e *SerializationError) Unwrap() error { return e.Err }
func (e *SerializationError) UserMessage() string {
	return "Could not produce the output file. Please try again."
}

// Error kinds, used for metric labels and status mapping.
const (
	KindOK        = "ok"
	KindInvalid   = "invalid"
	KindDecode    = "decode"
	KindEmpty     = "empty"
	KindSerialize = "serialize"
	KindOther     = "error"
)

// Kind classifies err into one of the Kind constants.
func Kind(err error) string {
	var (
		iv *InputValidationError
		de *DecodeError
		ee *EmptySelectionError
		se *SerializationError
	)
	switch {
	case err == nil:
		return KindOK
	case errors.As(err, &iv):
		return KindInvalid
	case errors.As(err, &ee):
		return KindEmpty
	case errors.As(err, &de):
		return KindDecode
	case errors.As(err, &se):
		return KindSerialize
	default:
		return KindOther
	}
}

// MessageFor turns err into the single message shown to the user. Validation
// and empty selection keep their own wording; everything else gets fallback.
func MessageFor(err error, fallback string) string {
	var (
		iv *InputValidationError
		ee *EmptySelectionError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &iv):
		return iv.UserMessage()
	case errors.As(err, &ee):
		return ee.UserMessage()
	}
	if fallback != "" {
		return fallback
	}
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return "Something went wrong. Please try again."
}
