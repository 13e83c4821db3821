package kernel

// timerObj is one application timer (spec §3 "Timer"). Value counts down
// once per tick; reaching zero fires OnExpire and reloads from
// reschedule (or disables, if reschedule is zero) — see tickTimersLocked
// below for the per-tick countdown itself, called from tick.go's tickOnce.
type timerObj struct {
	enabled     bool
	value       uint32
	initial     uint32
	reschedule  uint32
	expirations uint64
	onExpire    func(k *Kernel, param int)
	param       int
}

func (k *Kernel) initTimers() {
	k.timers = make([]*timerObj, len(k.cfg.Timers))
	for i, tc := range k.cfg.Timers {
		t := &timerObj{
			initial:    tc.Initial,
			reschedule: tc.Reschedule,
			onExpire:   tc.OnExpire,
			param:      tc.Param,
		}
		if tc.AutoEnable {
			t.enabled = true
			t.value = tc.Initial
		}
		k.timers[i] = t
	}
}

func (k *Kernel) checkTimer(timer int) Status {
	if k.cfg.ParameterChecking && (timer < 0 || timer >= len(k.timers)) {
		return StatusInvalidTimer
	}
	return StatusSuccess
}

// TimerControl enables or disables timer (spec §4.10). Enabling loads
// the initial time if the timer has never expired, or the reschedule
// time if it has; disabling simply sets the countdown to zero.
func (k *Kernel) TimerControl(timer int, enable bool) Status {
	if s := k.checkTimer(timer); s != StatusSuccess {
		return s
	}
	k.csEnter()
	defer k.csExit()

	t := k.timers[timer]
	if enable {
		t.enabled = true
		if t.expirations == 0 {
			t.value = t.initial
		} else {
			t.value = t.reschedule
		}
	} else {
		t.enabled = false
		t.value = 0
	}
	return StatusSuccess
}

// TimerGetRemaining returns the number of ticks before timer next
// expires.
func (k *Kernel) TimerGetRemaining(timer int) (uint32, Status) {
	if s := k.checkTimer(timer); s != StatusSuccess {
		return 0, s
	}
	k.csEnter()
	defer k.csExit()
	return k.timers[timer].value, StatusSuccess
}

// TimerReset restores timer to its initialized state (clearing its
// expiration count) and then, if enable is true, starts it running
// again. It fails StatusNotDisabled if the timer is currently enabled,
// matching the original's refusal to reset a live timer out from under
// itself.
func (k *Kernel) TimerReset(timer int, enable bool) Status {
	if s := k.checkTimer(timer); s != StatusSuccess {
		return s
	}
	k.csEnter()
	defer k.csExit()

	t := k.timers[timer]
	if t.enabled {
		return StatusNotDisabled
	}

	t.value = 0
	t.expirations = 0
	if enable {
		t.enabled = true
		t.value = t.initial
	}
	return StatusSuccess
}

// TimerInfo is the information-query result for one timer (spec §6).
type TimerInfo struct {
	Enabled     bool
	Expirations uint64
	Param       int
	Initial     uint32
	Reschedule  uint32
}

func (k *Kernel) TimerInformation(timer int) (TimerInfo, Status) {
	if s := k.checkTimer(timer); s != StatusSuccess {
		return TimerInfo{}, s
	}
	k.csEnter()
	defer k.csExit()

	t := k.timers[timer]
	return TimerInfo{
		Enabled:     t.enabled,
		Expirations: t.expirations,
		Param:       t.param,
		Initial:     t.initial,
		Reschedule:  t.reschedule,
	}, StatusSuccess
}

// TimerCount returns the configured number of timers.
func (k *Kernel) TimerCount() int { return len(k.timers) }

// expiredTimer is one timer's due callback, collected by tickTimersLocked
// while the critical section is held. The callback itself is invoked
// later, by tickOnce, only after the critical section has been released
// — see the doc comment on TimerConfig.OnExpire.
type expiredTimer struct {
	onExpire func(k *Kernel, param int)
	param    int
}

// tickTimersLocked counts down every enabled timer by one tick,
// reloading (or disabling, if Reschedule is zero) any timer that reaches
// zero, and collecting its OnExpire callback (if configured) to be fired
// once this tick's critical section is released. Called once per tick by
// the tick service with the critical section already held (spec §4.12
// step 1).
func (k *Kernel) tickTimersLocked() []expiredTimer {
	var expired []expiredTimer
	for _, t := range k.timers {
		if !t.enabled || t.value == 0 {
			continue
		}
		t.value--
		if t.value != 0 {
			continue
		}
		t.expirations++
		if t.onExpire != nil {
			expired = append(expired, expiredTimer{onExpire: t.onExpire, param: t.param})
		}
		if t.reschedule == 0 {
			t.enabled = false
		} else {
			t.value = t.reschedule
		}
	}
	return expired
}
