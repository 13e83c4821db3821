package kernel

// clockTickLocked advances the monotonic tick counter by one, when the
// Config enabled it (spec §4.12 step 2: "increment the system clock, if
// configured"). Called by tick.go with the critical section held.
func (k *Kernel) clockTickLocked() {
	if k.clockEnabled {
		k.clock++
	}
}
