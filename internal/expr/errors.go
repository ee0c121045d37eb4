package expr

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Parse error codes.
const (
	ErrSyntax          = "E001" // not a CUE expression
	ErrUnsupportedNode = "E002" // valid CUE, outside the expression grammar
	ErrUnknownName     = "E003" // identifier is not a constant
	ErrUnknownOp       = "E004" // call of an unknown operation
	ErrArity           = "E005" // wrong number of arguments
	ErrKind            = "E006" // argument of the wrong family
	ErrLiteral         = "E007" // bad or oversized integer literal
)

// CompileError represents a parse or check error with source position.
type CompileError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%d:%d: [%s] %s",
			e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func newCompileError(code string, pos token.Pos, format string, args ...any) *CompileError {
	return &CompileError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	}
}

// formatCUEError extracts position info from CUE parser errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Code: ErrSyntax, Message: err.Error()}
	}

	// Report the first error with position info
	first := errs[0]
	format, args := first.Msg()
	ce := &CompileError{
		Code:    ErrSyntax,
		Message: fmt.Sprintf(format, args...),
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
