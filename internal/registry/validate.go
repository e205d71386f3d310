package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/cmdlist/internal/ctxlog"
)

// ValidateRegistry checks that every factory produces a fresh, printable
// directive.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.builtins {
		d1, d2 := b.New(), b.New()
		switch {
		case d1 == nil:
			errs = append(errs, fmt.Sprintf("built-in '%s': factory returned nil", b.Name))
		case d1.String() == "":
			errs = append(errs, fmt.Sprintf("built-in '%s': directive has no text form", b.Name))
		case isPointer(d1) && d1 == d2:
			errs = append(errs, fmt.Sprintf("built-in '%s': factory returned a shared directive", b.Name))
		}
		if b.Doc == "" {
			logger.Warn("Built-in has no description.", "name", b.Name)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validated.", "builtins", len(r.builtins))
	return nil
}

func isPointer(v any) bool {
	return reflect.ValueOf(v).Kind() == reflect.Pointer
}
