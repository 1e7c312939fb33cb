package record

import "errors"

var (
	ErrUnknownArity  = errors.New("unknown arity")
	ErrArityMismatch = errors.New("record length does not match arity")
	ErrNegativeArity = errors.New("negative arity")
)
