package orchestrator

import (
	"github.com/gobwas/glob"

	"github.com/onecst/onecst/internal/errors"
	"github.com/onecst/onecst/internal/rac"
)

// Exclusion decides which sessions survive a run, by application identifier.
// Patterns use glob syntax, so "COMConnection" matches only itself while
// "Web*" matches every web client kind.
type Exclusion struct {
	patterns []string
	globs    []glob.Glob
}

// NewExclusion compiles patterns. An invalid pattern yields a
// ValidationError naming it.
func NewExclusion(patterns ...string) (*Exclusion, error) {
	e := &Exclusion{patterns: append([]string(nil), patterns...)}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.NewValidationError("invalid session exclusion pattern").
				WithField("sessions.exclude").
				WithValue(p).
				WithCause(err)
		}
		e.globs = append(e.globs, g)
	}
	return e, nil
}

// DefaultExclusion excludes background jobs and COM connections.
func DefaultExclusion() *Exclusion {
	e, err := NewExclusion(rac.DefaultExcludedApps...)
	if err != nil {
		panic(err)
	}
	return e
}

// Match reports whether a session with the given application identifier
// is excluded.
func (e *Exclusion) Match(appID string) bool {
	if e == nil {
		return false
	}
	for _, g := range e.globs {
		if g.Match(appID) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns.
func (e *Exclusion) Patterns() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.patterns...)
}
