// Package invariant reports broken contracts between simulation components.
// A violation is a programming error, not a game outcome, so it always halts.
package invariant

import (
	"fmt"
	"log/slog"
)

// Violation is the panic value raised when a contract is broken.
type Violation struct {
	Msg string
}

func (v *Violation) Error() string { return "contract violation: " + v.Msg }

// Require panics with a *Violation when cond is false.
func Require(cond bool, format string, args ...any) {
	if cond {
		return
	}
	v := &Violation{Msg: fmt.Sprintf(format, args...)}
	slog.Error("contract violation", "msg", v.Msg)
	panic(v)
}

// Fail panics unconditionally.
func Fail(format string, args ...any) {
	Require(false, format, args...)
}
