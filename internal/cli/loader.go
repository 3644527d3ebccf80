package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/kanjimerge/internal/compiler"
	"github.com/roach88/kanjimerge/internal/ir"
)

// LoadError represents an error that occurred while loading a game file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadGame compiles a game definition. path may name a single .cue file or
// a directory holding one CUE package.
func LoadGame(path string) (*ir.GameSpec, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("game path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing game path: %v", err)}
	}

	var spec *ir.GameSpec
	if info.IsDir() {
		spec, err = compiler.CompileDir(path)
	} else {
		spec, err = compiler.CompileFile(path)
	}
	if err != nil {
		return nil, convertCompileError(err)
	}
	return spec, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// loadErrorCode returns the code of a LoadError, or ErrCodeGeneric.
func loadErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeJournal     = "E007" // Journal open/read/write error
)

// MapFieldToErrorCode maps a compiler error field to an error code.
// Fields are CUE paths such as "board.rows", "game.recipes[2].score" or
// "#Game.max_cascade"; the first known game key decides.
func MapFieldToErrorCode(field string) string {
	segments := strings.FieldsFunc(field, func(r rune) bool {
		return r == '.' || r == '[' || r == ']'
	})
	for _, seg := range segments {
		switch seg {
		case "board":
			return compiler.ErrBoardSize
		case "pool":
			return compiler.ErrPoolEmpty
		case "recipes":
			return compiler.ErrRecipeInvalid
		case "triples":
			return compiler.ErrTripleInvalid
		case "terminals":
			return compiler.ErrTerminalInvalid
		case "scores", "reshuffle", "max_cascade", "seed":
			return compiler.ErrTunableInvalid
		case "load":
			return ErrCodeLoadFailed
		case "cue":
			return ErrCodeBuildFailed
		}
	}
	return ErrCodeGeneric
}
