package scale

import "errors"

// ErrUninitialized matches every *UninitializedError with errors.Is.
var ErrUninitialized = errors.New("scale engine not configured")

// UninitializedError is returned by Engine queries made before the first
// Configure when the engine runs in Strict mode.
type UninitializedError struct {
	Op string
}

func (e *UninitializedError) Error() string {
	return e.Op + ": " + ErrUninitialized.Error() + " (call Configure first)"
}

// Is makes errors.Is(err, ErrUninitialized) hold.
func (e *UninitializedError) Is(target error) bool { return target == ErrUninitialized }
