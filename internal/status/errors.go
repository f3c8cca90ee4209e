package status

import "errors"

// ErrNotTerminal is returned by ExitStatusOf when called on a job that
// is neither DONE nor STOPPED — a programmer-visible precondition
// violation per spec.md §7, surfaced as an error here (rather than a
// panic) since a caller racing the reaper can hit it without any bug
// of its own, unlike jobtypes.Assertf's hard-invariant violations.
var ErrNotTerminal = errors.New("status: exit status requested on a job that is not DONE or STOPPED")
