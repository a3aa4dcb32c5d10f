// Package simerr defines the three failure kinds of the simulation's error
// design: a raise-to-caller sentinel for an unworkable seed, a rejected-load
// error for corrupt save data, and a panic-carrying type for invariant
// violations during a tick. See design doc Section 7.
package simerr

import (
	"errors"
	"fmt"
)

// ErrWorldUninhabitable is returned by Simulation.Initialize when fewer
// than the minimum number of tribes could be placed within the
// rejection-sampling budget. The implementation raises this to the caller
// rather than silently re-seeding; callers that want auto-reseed loop on
// this error themselves.
var ErrWorldUninhabitable = errors.New("simerr: world has too little habitable land to place the minimum tribes")

// ErrSaveCorrupt is returned by persistence.Deserialize when a loaded save
// fails schema validation or a post-parse invariant check. The simulation
// passed to Deserialize, if any, is left untouched.
var ErrSaveCorrupt = errors.New("simerr: save data is corrupt or fails invariant checks")

// WrapSaveCorrupt annotates ErrSaveCorrupt with the specific reason a load
// was rejected, while remaining matchable with errors.Is(err,
// ErrSaveCorrupt).
func WrapSaveCorrupt(reason string) error {
	return fmt.Errorf("%w: %s", ErrSaveCorrupt, reason)
}

// LogicViolation is the panic value Raise carries for an invariant that
// must never break absent a bug (a tile double-owned, negative population,
// an off-grid neighbor). Simulation.Tick recovers it, converts it to a
// returned error, and halts the simulation — spec §7's fail-fast policy for
// LogicAssertion failures. No tick phase calls Raise; the tick code does
// not check for these violations.
type LogicViolation struct {
	Invariant string
	Detail    string
}

func (v *LogicViolation) Error() string {
	return fmt.Sprintf("simerr: logic violation (%s): %s", v.Invariant, v.Detail)
}

// Raise panics with a LogicViolation, which Simulation.Tick's recover turns
// into a returned error when the panic happens inside a tick.
func Raise(invariant, detail string) {
	panic(&LogicViolation{Invariant: invariant, Detail: detail})
}
