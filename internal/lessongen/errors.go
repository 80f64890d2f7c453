package lessongen

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolved marks a spec that could not be bound to the item. Callers
	// skip the question and keep going.
	ErrUnresolved = errors.New("question unresolved")
	// ErrUnknownSource marks a source or repeat kind outside the resolver's vocabulary.
	ErrUnknownSource = errors.New("unknown option source")
)

func unresolved(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnresolved, fmt.Sprintf(format, args...))
}

// unknownSource satisfies both errors.Is(err, ErrUnknownSource) and
// errors.Is(err, ErrUnresolved).
func unknownSource(kind any) error {
	return fmt.Errorf("%w: %w %q", ErrUnresolved, ErrUnknownSource, kind)
}
