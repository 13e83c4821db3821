package kernel

// Scheduler is the common interface behind the four policies spec §4.11
// names. Exactly one is built, chosen by Config.Scheduler; the rest of
// the kernel never type-switches on which one it has, it only calls
// start/reschedule, the same way the teacher's emulated-CPU core talks
// to a handful of small interfaces rather than branching on concrete
// types.
type Scheduler interface {
	// start picks the task the kernel hands control to first. Called
	// once, before any task goroutine has run.
	start(k *Kernel) int

	// reschedule selects (and, except under run-to-completion, switches
	// to) the next task to run. hint is only meaningful to the priority
	// scheduler; every other caller passes noTaskHint. Must be called
	// with the critical section held, and returns with it held again —
	// see rescheduleLocked's doc comment in task.go.
	reschedule(k *Kernel, hint int)
}

func newScheduler(kind SchedulerKind) Scheduler {
	switch kind {
	case SchedulerRunToCompletion:
		return rtcScheduler{}
	case SchedulerRoundRobin:
		return roundRobinScheduler{}
	case SchedulerTimeSlice:
		return timeSliceScheduler{}
	case SchedulerPriority:
		return priorityScheduler{}
	default:
		panic("kernel: unknown scheduler kind")
	}
}

// switchToLocked is the context-swap primitive every non-RTC scheduler
// uses. It must be called with the critical section held; it releases
// the lock, hands the baton to next's goroutine, parks the caller's
// goroutine on its own baton, and reacquires the lock once something
// hands the baton back. See task.go's rescheduleLocked for the
// surrounding contract.
//
// This stands in for the "external primitive" spec §9 describes for a
// real context swap (save/restore registers and stack pointer); a
// goroutine already owns its stack, so the only state to hand off is
// "which one gets to proceed", which a pair of capacity-1 channels does
// directly — grounded on the M/P handoff-channel pattern in the pack's
// toy scheduler examples (other_examples/toysched5..7), applied per-task
// rather than per-processor.
func (k *Kernel) switchToLocked(next int) {
	self := k.active
	k.active = next
	k.tasks[next].scheduleCount++
	k.csExit()
	k.tasks[next].resume <- struct{}{}
	<-k.tasks[self].resume
	k.csEnter()
}

func firstReadyTask(k *Kernel) int {
	task, ok := firstReadyTaskOrNone(k)
	if !ok {
		panic("kernel: no ready task found; scheduler invariant violated")
	}
	return task
}

// firstReadyTaskOrNone is firstReadyTask without the panic, for the one
// caller (kernel.go's finishTaskLocked) where "nothing left to run" is a
// legitimate outcome rather than an invariant violation.
func firstReadyTaskOrNone(k *Kernel) (int, bool) {
	for i, t := range k.tasks {
		if t.status().State == TaskReady {
			return i, true
		}
	}
	return 0, false
}

// rtcScheduler is the run-to-completion policy: kernel.go's runRTC loop
// does all the dispatching itself by scanning the task table once per
// round, so this scheduler has nothing to pick and nothing to swap.
// Blocking calls are forbidden at build time under RTC (spec §4.11), so
// reschedule is only ever reached via TaskSuspend/TaskReset/Sleep acting
// on the active task, none of which need an actual swap here: the task's
// entry function returns control to the RTC loop on its own right after.
type rtcScheduler struct{}

func (rtcScheduler) start(k *Kernel) int { return 0 }

func (rtcScheduler) reschedule(k *Kernel, hint int) {}

// roundRobinScheduler selects strictly by increasing task index modulo
// N, skipping non-ready tasks when suspend is enabled (spec §4.11).
type roundRobinScheduler struct{}

func (roundRobinScheduler) start(k *Kernel) int {
	if k.cfg.BlockingEnabled {
		return firstReadyTask(k)
	}
	return 0
}

func (roundRobinScheduler) reschedule(k *Kernel, hint int) {
	n := len(k.tasks)
	next := nextRoundRobinTask(k, n)
	k.switchToLocked(next)
}

func nextRoundRobinTask(k *Kernel, n int) int {
	if !k.cfg.BlockingEnabled {
		return (k.active + 1) % n
	}
	next := k.active
	for {
		next = (next + 1) % n
		if k.tasks[next].status().State == TaskReady {
			return next
		}
	}
}

// timeSliceScheduler is round-robin plus a tick-driven countdown: the
// slice counter is reloaded on every reschedule (voluntary or forced),
// matching NUSE_Reschedule's comment "done here to accommodate
// relinquish as well as ISR count down".
type timeSliceScheduler struct{}

func (timeSliceScheduler) start(k *Kernel) int {
	return roundRobinScheduler{}.start(k)
}

func (timeSliceScheduler) reschedule(k *Kernel, hint int) {
	n := len(k.tasks)
	next := nextRoundRobinTask(k, n)
	k.timeSliceRemaining = k.cfg.TimeSliceTicks
	k.switchToLocked(next)
}

// priorityScheduler treats task index as priority, 0 highest. A hint of
// noTaskHint picks the highest-priority ready task unconditionally; a
// concrete hint only swaps when it names a task at least as important as
// whoever is active now (spec §4.11's "wake of a higher-or-equal-
// priority task preempts; wake of a lower-priority task does not").
type priorityScheduler struct{}

func (priorityScheduler) start(k *Kernel) int {
	return firstReadyTask(k)
}

func (priorityScheduler) reschedule(k *Kernel, hint int) {
	next := hint
	if hint == noTaskHint {
		next = firstReadyTask(k)
	} else if hint > k.active {
		return
	}
	k.switchToLocked(next)
}
