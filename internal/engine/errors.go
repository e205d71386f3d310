package engine

import (
	"errors"
	"fmt"
)

// ErrNotLoaded is returned by runtime entry points before the first Load.
var ErrNotLoaded = errors.New("no program loaded")

// LoadError lists the sections a load rejected. The rest of the program was
// loaded and published.
type LoadError struct {
	Errs []error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%d section(s) rejected:\n%v", len(e.Errs), errors.Join(e.Errs...))
}

func (e *LoadError) Unwrap() []error { return e.Errs }
