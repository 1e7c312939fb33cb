package intern

import (
	"errors"

	"go.uber.org/zap"
)

var (
	ErrOutOfRange       = errors.New("id out of range")
	ErrIDSpaceExhausted = errors.New("id space exhausted")
)

// Fatal logs err with fields and panics with it.
// The tables call it when an internal invariant has been violated; an
// unrecovered panic terminates the process with the diagnostic.
func Fatal(logger *zap.Logger, err error, fields ...zap.Field) {
	logger.Error("interning table invariant violated", append(fields, zap.Error(err))...)
	panic(err)
}
