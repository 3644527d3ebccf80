package grid

import (
	"errors"
	"fmt"

	"github.com/roach88/kanjimerge/internal/ir"
)

// IndexError is returned for any access outside [0,rows)×[0,cols).
type IndexError struct {
	Pos  ir.Pos
	Rows int
	Cols int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("cell %s out of range for %dx%d board", e.Pos, e.Rows, e.Cols)
}

// IsIndexError returns true if the error is an IndexError.
// Uses errors.As to handle wrapped errors.
func IsIndexError(err error) bool {
	var ie *IndexError
	return errors.As(err, &ie)
}
