package kernel

// SignalsSend ORs signals into task's signal flags (spec §4.9). Unlike
// every other signaling primitive in this kernel, sending never wakes a
// waiter: there is no signals-receive-suspend in Nucleus SE, only a
// destructive poll, so there is nothing to wake.
func (k *Kernel) SignalsSend(task int, signals uint8) Status {
	if s := k.checkTask(task); s != StatusSuccess {
		return s
	}
	k.csEnter()
	defer k.csExit()

	k.tasks[task].signals |= signals
	return StatusSuccess
}

// SignalsReceive returns and clears the active task's accumulated signal
// flags. It can only ever be called by a task about itself, matching
// NUSE_Signals_Receive's lack of a task parameter.
func (k *Kernel) SignalsReceive() uint8 {
	k.csEnter()
	defer k.csExit()

	self := k.tasks[k.active]
	signals := self.signals
	self.signals = 0
	return signals
}
