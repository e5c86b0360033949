// Package registry names the engine kinds and builds engines by kind or
// name.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-fxcore/engine/feedback"
	"github.com/cwbudde/algo-fxcore/engine/granular"
	"github.com/cwbudde/algo-fxcore/engine/transient"
)

// ErrUnknownKind is returned for names and kinds outside the closed set.
var ErrUnknownKind = errors.New("unknown engine kind")

// Kind is one of the built-in engines.
type Kind int

const (
	FeedbackNetwork Kind = iota
	GranularCloud
	TransientShaper
)

// Kinds lists every Kind in order.
var Kinds = []Kind{FeedbackNetwork, GranularCloud, TransientShaper}

// String returns the registry name of k.
func (k Kind) String() string {
	switch k {
	case FeedbackNetwork:
		return feedback.Name
	case GranularCloud:
		return granular.Name
	case TransientShaper:
		return transient.Name
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind resolves a registry name, ignoring case and surrounding space.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds {
		if k.String() == n {
			return k, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}
