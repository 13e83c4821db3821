package kernel

import (
	"context"
	"time"
)

// signalPreempt delivers a non-blocking, coalescing wake-up to a task's
// preempt channel (task.go's Checkpoint). Capacity 1 means a second
// signal before the first is consumed is simply dropped — one pending
// preemption request is all a single Checkpoint call can ever act on.
func signalPreempt(t *taskRecord) {
	select {
	case t.preempt <- struct{}{}:
	default:
	}
}

// wakeTaskFromTickLocked transitions task to ready from within the tick
// service. Unlike wakeTaskLocked (task.go), it never calls
// rescheduleLocked itself — the tick service does not run on any task's
// goroutine, so it cannot perform the context swap that rescheduleLocked
// would trigger (switchToLocked's handoff assumes its caller is the
// active task's own goroutine). Instead, under the priority scheduler,
// it records the woken task in k.next, signals the active task's preempt
// channel, and leaves the actual swap to the active task's next
// Checkpoint call (which reschedules to the highest-priority ready task)
// or next blocking service call.
func (k *Kernel) wakeTaskFromTickLocked(task int) {
	k.tasks[task].setStatus(readyStatus())
	if k.cfg.Scheduler == SchedulerPriority {
		k.next = task
		signalPreempt(k.tasks[k.active])
	}
}

// tickOnce performs one pass of the periodic tick service, in the same
// four-step order as NUSE_Real_Time_Clock_ISR (spec §4.12):
//
//  1. decrement and act upon every enabled timer
//  2. advance the system clock, if configured
//  3. decrement task sleep timeouts, waking any that reach zero
//  4. under the time-slice scheduler, decrement the slice counter and
//     request a forced reschedule on expiry
//
// All four steps run as one pass under the critical section, with
// execContext set to ContextManagedISR for its duration (spec §5: the
// execution-context variable "must itself be set and restored precisely
// on every ISR entry/exit"). Any timer due this tick has its OnExpire
// callback collected but not yet invoked — see timer.go's expiredTimer —
// because a callback is ordinary application code that may make kernel
// service calls of its own (e.g. SignalsSend), and csEnter is a plain
// sync.Mutex with no notion of "already held by the context that's
// calling me": invoking it while still holding the lock from this pass
// would self-deadlock. So the critical section is released, and
// execContext restored, before any callback runs.
//
// Must be called from the tick service's own goroutine, never from a
// task's.
func (k *Kernel) tickOnce() {
	k.csEnter()
	k.execContext = ContextManagedISR

	expired := k.tickTimersLocked()

	k.clockTickLocked()

	if k.cfg.TaskSleepEnabled {
		for i, t := range k.tasks {
			if t.timeout == 0 {
				continue
			}
			t.timeout--
			if t.timeout == 0 {
				k.wakeTaskFromTickLocked(i)
			}
		}
	}

	if k.cfg.Scheduler == SchedulerTimeSlice && k.timeSliceRemaining > 0 {
		k.timeSliceRemaining--
		if k.timeSliceRemaining == 0 {
			k.next = nextRoundRobinTask(k, len(k.tasks))
			signalPreempt(k.tasks[k.active])
		}
	}

	k.execContext = ContextTask
	k.csExit()

	for _, e := range expired {
		e.onExpire(k, e.param)
	}
}

// RunTickService calls tickOnce once per interval until ctx is canceled
// or the kernel is shut down. It is the goroutine-based stand-in for the
// original's periodic hardware timer interrupt (spec §9): there is no
// real interrupt here, just another goroutine racing the task goroutines
// for the same critical section, so the caller is expected to launch it
// alongside Run, typically from an errgroup.Group (see cmd/nusemonitor).
func (k *Kernel) RunTickService(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-k.shutdown:
			return
		case <-ticker.C:
			k.tickOnce()
		}
	}
}
