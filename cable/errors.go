// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cable

import (
	"errors"
	"fmt"
)

var (
	// ErrNonFinite is a numerical-integrity fault: a voltage or gating
	// variable became NaN or Inf during stepping.  The run is invalid and
	// must not be continued -- silent recovery would corrupt every
	// downstream physiological interpretation.
	ErrNonFinite = errors.New("cable: non-finite state (NaN or Inf)")

	// ErrIndex is a caller contract violation: an out-of-range compartment
	// index was passed to an injection or readout call.
	ErrIndex = errors.New("cable: compartment index out of range")
)

// StepError carries the location of a numerical-integrity fault.
type StepError struct {
	Comp int     // compartment where the fault was detected
	Time float32 // simulation time (ms) of the failed step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step at t=%gms comp %d: %v", e.Time, e.Comp, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
