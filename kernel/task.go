package kernel

// taskRecord is one row of the task table (spec §3 "Task"). Stack
// base/size and saved context are omitted entirely — there is no
// register/stack context to save in Go, goroutines already carry their
// own stack, so the "saved context slot" has no analogue here.
type taskRecord struct {
	entry TaskEntry

	st            TaskStatus
	blockReturn   Status
	timeout       uint32
	signals       uint8
	scheduleCount uint64

	// resume is the per-task baton: sending to it is "give this task the
	// CPU", receiving from it (from within the task's own goroutine) is
	// "give up the CPU until woken". Capacity 1 so a wake that races a
	// not-yet-parked receiver still lands.
	resume chan struct{}

	// preempt carries a tick-driven forced reschedule request across
	// goroutines (see Checkpoint below). Only the tick service ever sends
	// to it; only the task's own goroutine, at a checkpoint, receives.
	preempt chan struct{}
}

func (t *taskRecord) status() TaskStatus { return t.st }

func (t *taskRecord) setStatus(s TaskStatus) { t.st = s }

func (k *Kernel) initTasks() {
	k.tasks = make([]*taskRecord, len(k.cfg.Tasks))
	for i, tc := range k.cfg.Tasks {
		k.tasks[i] = &taskRecord{
			entry:       tc.Entry,
			st:          readyStatus(),
			blockReturn: StatusSuccess,
			resume:      make(chan struct{}, 1),
			preempt:     make(chan struct{}, 1),
		}
	}
	k.active = 0
	k.next = 0
}

// TaskCount returns the configured number of tasks.
func (k *Kernel) TaskCount() int { return len(k.tasks) }

// TaskCurrent returns the index of the currently active task.
func (k *Kernel) TaskCurrent() int { return k.active }

// TaskStatusOf returns the status of the given task. Like any
// information query (spec §6) it is a point-in-time snapshot.
func (k *Kernel) TaskStatusOf(task int) (TaskStatus, Status) {
	if s := k.checkTask(task); s != StatusSuccess {
		return TaskStatus{}, s
	}
	return k.tasks[task].status(), StatusSuccess
}

// TaskScheduleCount returns the number of times the task has been
// dispatched since init or its last reset.
func (k *Kernel) TaskScheduleCount(task int) (uint64, Status) {
	if s := k.checkTask(task); s != StatusSuccess {
		return 0, s
	}
	return k.tasks[task].scheduleCount, StatusSuccess
}

// TaskCheckStack always returns 0: there is no stack-space accounting to
// perform when tasks run as goroutines with Go-managed, growable stacks
// (spec §4.2 marks this "undefined under RTC"; it is equally not
// meaningful here regardless of scheduler, for the same underlying
// reason — no fixed, probeable stack).
func (k *Kernel) TaskCheckStack(task int) (uint16, Status) {
	if s := k.checkTask(task); s != StatusSuccess {
		return 0, s
	}
	return 0, StatusSuccess
}

// TaskSuspend unconditionally suspends task (spec §4.2). If task is the
// caller's own task, control is yielded to the scheduler immediately;
// suspending any other task only updates its status, since a task that
// is not currently active is not running and needs no reschedule.
func (k *Kernel) TaskSuspend(task int) Status {
	if s := k.checkTask(task); s != StatusSuccess {
		return s
	}
	k.csEnter()
	defer k.csExit()

	self := k.active
	k.suspendTaskLocked(task, TaskStatus{State: TaskPureSuspended})
	if task == self {
		k.rescheduleLocked(noTaskHint)
		return k.tasks[self].blockReturn
	}
	return StatusSuccess
}

// suspendTaskLocked sets task's status and, mirroring NUSE_Suspend_Task,
// resets its blocking-return slot to success — the original does this
// unconditionally, even for a pure or sleep suspend that nothing will
// ever read a "blocking return" for, and this port preserves that rather
// than special-casing it away.
func (k *Kernel) suspendTaskLocked(task int, st TaskStatus) {
	k.tasks[task].setStatus(st)
	if k.cfg.BlockingEnabled {
		k.tasks[task].blockReturn = StatusSuccess
	}
}

// TaskResume wakes a pure-suspended task. It is invalid_resume unless the
// target is currently pure-suspended.
func (k *Kernel) TaskResume(task int) Status {
	if s := k.checkTask(task); s != StatusSuccess {
		return s
	}
	k.csEnter()
	defer k.csExit()

	if k.tasks[task].status().State != TaskPureSuspended {
		return StatusInvalidResume
	}
	if k.cfg.TaskSleepEnabled {
		k.tasks[task].timeout = 0
	}
	k.wakeTaskLocked(task)
	return StatusSuccess
}

// Sleep suspends the active task for the given number of ticks, waking
// it once the tick service counts the timeout down to zero. It must be
// called from within the task's own entry point (there is no "other
// task" form, matching NUSE_Task_Sleep).
func (k *Kernel) Sleep(ticks uint16) {
	k.csEnter()
	defer k.csExit()

	self := k.active
	k.tasks[self].timeout = uint32(ticks)
	k.suspendTaskLocked(self, TaskStatus{State: TaskSleeping})
	k.rescheduleLocked(noTaskHint)
}

// Relinquish voluntarily yields the CPU to the next ready task. It has
// no effect under run-to-completion (each task already returns to the
// scheduler loop on its own) and is not a legal call under the priority
// scheduler (spec §4.11) — callers should not invoke it when Config
// selects SchedulerPriority; doing so returns StatusInvalidOperation
// rather than silently doing nothing.
func (k *Kernel) Relinquish() Status {
	switch k.cfg.Scheduler {
	case SchedulerRunToCompletion:
		return StatusSuccess
	case SchedulerPriority:
		return StatusInvalidOperation
	}
	k.csEnter()
	defer k.csExit()
	k.rescheduleLocked(noTaskHint)
	return StatusSuccess
}

// Checkpoint lets a task that performs a long, non-blocking computation
// give the tick-driven preemption path (time-slice expiry, or a
// tick-woken higher-priority task) a chance to actually take effect.
// Every blocking service call already does this internally; a task body
// that loops for many ticks without calling one should call Checkpoint
// periodically. This is a direct consequence of goroutines having no
// asynchronous preemption: the original's tick ISR can force a context
// swap at any instruction boundary, but here the forced swap can only
// happen when the running task cooperates.
func (k *Kernel) Checkpoint() {
	self := k.tasks[k.active]
	select {
	case <-self.preempt:
	default:
		return
	}
	k.csEnter()
	defer k.csExit()
	k.rescheduleLocked(noTaskHint)
}

// TaskReset restores task to its initialized state and leaves it
// pure-suspended. If the task was blocked on an object, the object's
// blocked-count is decremented as if the wait had never started.
//
// Unlike the original (spec Open Question 3), the blocking-return slot
// is set to StatusTaskWasReset rather than left untouched: a task force-
// run past its now-abandoned wait loop observes a deliberate status
// instead of whatever happened to be there.
func (k *Kernel) TaskReset(task int) Status {
	if s := k.checkTask(task); s != StatusSuccess {
		return s
	}
	k.csEnter()
	defer k.csExit()

	self := k.active
	if k.cfg.BlockingEnabled {
		st := k.tasks[task].status()
		if st.State == TaskWaiting {
			k.decrementBlockedCountLocked(st.Class, st.Object)
		}
	}

	k.tasks[task].timeout = 0
	k.tasks[task].signals = 0
	k.tasks[task].scheduleCount = 0
	k.tasks[task].setStatus(TaskStatus{State: TaskPureSuspended})
	k.tasks[task].blockReturn = StatusTaskWasReset

	if task == self {
		k.rescheduleLocked(noTaskHint)
		return k.tasks[self].blockReturn
	}
	return StatusSuccess
}

func (k *Kernel) decrementBlockedCountLocked(class ObjectClass, object int) {
	switch class {
	case ClassMailbox:
		k.mailboxes[object].blockedCount--
	case ClassSemaphore:
		k.semaphores[object].blockedCount--
	case ClassPartitionPool:
		k.partitionPools[object].blockedCount--
	case ClassQueue:
		k.queues[object].blockedCount--
	case ClassPipe:
		k.pipes[object].blockedCount--
	case ClassEventGroup:
		k.eventGroups[object].blockedCount--
	}
}

// wakeTaskLocked transitions task to ready (spec §4.14 "wake-one") and,
// under the priority scheduler, offers it as a preemption hint.
func (k *Kernel) wakeTaskLocked(task int) {
	k.tasks[task].setStatus(readyStatus())
	if k.cfg.Scheduler == SchedulerPriority {
		k.rescheduleLocked(task)
	}
}

// wakeLowestWaiterLocked scans the task table in ascending index order
// for the first task waiting on (class, object) and wakes it. Returns
// true if a task was woken. This is the literal "scan on every signaling
// event" policy of spec §4.14 — no waiter list is ever built.
func (k *Kernel) wakeLowestWaiterLocked(class ObjectClass, object int) bool {
	for i, t := range k.tasks {
		st := t.status()
		if st.State == TaskWaiting && st.Class == class && st.Object == object {
			k.decrementBlockedCountLocked(class, object)
			k.wakeTaskLocked(i)
			return true
		}
	}
	return false
}

// wakeAllWaitersLocked drains every task waiting on (class, object),
// each with the given return status, decrementing the blocked-count to
// zero. Used by every object's reset operation and (with status always
// success) by event_group_set. Unlike wakeLowestWaiterLocked, it sets
// status directly for each waiter rather than going through
// wakeTaskLocked — the original's reset loops never call Wake_Task per
// waiter, only a single combined reschedule hint after the whole drain
// completes, and this keeps that shape.
func (k *Kernel) wakeAllWaitersLocked(class ObjectClass, object int, status Status) {
	for i, t := range k.tasks {
		st := t.status()
		if st.State == TaskWaiting && st.Class == class && st.Object == object {
			k.tasks[i].blockReturn = status
			k.tasks[i].setStatus(readyStatus())
			k.decrementBlockedCountLocked(class, object)
		}
	}
	if k.cfg.Scheduler == SchedulerPriority {
		k.rescheduleLocked(noTaskHint)
	}
}

// blockSelfLocked marks the active task as waiting on (class, object),
// yields, and returns the status the waiter should hand back to its
// caller once woken (success, or an object-was-reset code). The critical
// section is held on entry and, despite the intervening yield, held
// again by the time this returns — see rescheduleLocked.
func (k *Kernel) blockSelfLocked(class ObjectClass, object int) Status {
	self := k.active
	k.tasks[self].setStatus(waitingStatus(class, object))
	k.rescheduleLocked(noTaskHint)
	return k.tasks[self].blockReturn
}

// rescheduleLocked asks the active scheduler to pick a task and, if
// required, swap to it. hint is only consulted by the priority
// scheduler; pass noTaskHint from every other call site.
//
// Calling convention: the critical section must be held on entry, and is
// held again by the time this returns. When a swap actually happens
// (switchToLocked), the lock is released for the duration the caller's
// goroutine is parked — other goroutines (other tasks, the tick
// service) need it to make progress — and reacquired right before this
// task resumes. This mirrors the original's global interrupt mask, which
// a real context swap carries across into whichever task's saved
// context is restored: every suspended task is frozen precisely between
// its own cs_enter and cs_exit, so the moment it is resumed it is, in
// effect, straight back inside its own critical section.
func (k *Kernel) rescheduleLocked(hint int) {
	k.scheduler.reschedule(k, hint)
}
