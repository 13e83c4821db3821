package kernel

// semaphoreObj is a counting semaphore clamped to [0, 255] (spec §3
// "Semaphore"). The original stores the counter as a U8; the clamp at
// 255 (rather than wrapping) is the behavior spec §4.7 and §8 require,
// so it is enforced explicitly rather than relying on an actual 8-bit
// type.
type semaphoreObj struct {
	counter      int
	blockedCount int
}

func (k *Kernel) initSemaphores() {
	k.semaphores = make([]*semaphoreObj, len(k.cfg.Semaphores))
	for i, sc := range k.cfg.Semaphores {
		k.semaphores[i] = &semaphoreObj{counter: sc.Initial}
	}
}

func (k *Kernel) checkSemaphore(semaphore int) Status {
	if k.cfg.ParameterChecking && (semaphore < 0 || semaphore >= len(k.semaphores)) {
		return StatusInvalidSemaphore
	}
	return StatusSuccess
}

// SemaphoreObtain decrements semaphore's counter if nonzero, else fails
// StatusUnavailable, without blocking.
func (k *Kernel) SemaphoreObtain(semaphore int) Status {
	return k.semaphoreObtain(semaphore, NoSuspend)
}

// SemaphoreObtainSuspend is SemaphoreObtain with the caller willing to
// block until the counter becomes nonzero.
func (k *Kernel) SemaphoreObtainSuspend(semaphore int) Status {
	return k.semaphoreObtain(semaphore, Suspend)
}

func (k *Kernel) semaphoreObtain(semaphore int, suspend SuspendOption) Status {
	if s := k.checkSemaphore(semaphore); s != StatusSuccess {
		return s
	}
	if !k.cfg.BlockingEnabled && bool(suspend) {
		return StatusInvalidSuspend
	}

	k.csEnter()
	defer k.csExit()

	sem := k.semaphores[semaphore]
	for {
		if sem.counter != 0 {
			sem.counter--
			return StatusSuccess
		}
		if !k.cfg.BlockingEnabled || !bool(suspend) {
			return StatusUnavailable
		}
		sem.blockedCount++
		status := k.blockSelfLocked(ClassSemaphore, semaphore)
		if status != StatusSuccess {
			return status
		}
	}
}

// SemaphoreRelease increments semaphore's counter if below 255, waking
// at most one waiter on success; at 255 it fails StatusUnavailable
// rather than wrapping (spec §4.7).
func (k *Kernel) SemaphoreRelease(semaphore int) Status {
	if s := k.checkSemaphore(semaphore); s != StatusSuccess {
		return s
	}
	k.csEnter()
	defer k.csExit()

	sem := k.semaphores[semaphore]
	if sem.counter >= 255 {
		return StatusUnavailable
	}
	sem.counter++
	if k.cfg.BlockingEnabled && sem.blockedCount != 0 {
		k.wakeLowestWaiterLocked(ClassSemaphore, semaphore)
	}
	return StatusSuccess
}

// SemaphoreReset sets semaphore's counter to initial and wakes every
// blocked waiter with StatusSemaphoreWasReset (spec §4.7).
func (k *Kernel) SemaphoreReset(semaphore int, initial int) Status {
	if s := k.checkSemaphore(semaphore); s != StatusSuccess {
		return s
	}
	k.csEnter()
	defer k.csExit()

	sem := k.semaphores[semaphore]
	sem.counter = initial

	if k.cfg.BlockingEnabled {
		k.wakeAllWaitersLocked(ClassSemaphore, semaphore, StatusSemaphoreWasReset)
	}
	return StatusSuccess
}

// SemaphoreInfo is the information-query result for one semaphore (spec
// §6).
type SemaphoreInfo struct {
	Counter          int
	TasksWaiting     int
	FirstWaitingTask int
}

func (k *Kernel) SemaphoreInformation(semaphore int) (SemaphoreInfo, Status) {
	if s := k.checkSemaphore(semaphore); s != StatusSuccess {
		return SemaphoreInfo{}, s
	}
	k.csEnter()
	defer k.csExit()

	sem := k.semaphores[semaphore]
	info := SemaphoreInfo{Counter: sem.counter}
	if k.cfg.BlockingEnabled {
		info.TasksWaiting = sem.blockedCount
		info.FirstWaitingTask = k.firstWaiterLocked(ClassSemaphore, semaphore)
	}
	return info, StatusSuccess
}

// SemaphoreCount returns the configured number of semaphores.
func (k *Kernel) SemaphoreCount() int { return len(k.semaphores) }
