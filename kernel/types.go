// Package kernel implements a statically-configured real-time
// multitasking microkernel: a fixed-count table of tasks, partition pools,
// mailboxes, queues, pipes, semaphores, event groups, and timers, driven
// by one of four interchangeable schedulers.
//
// Every object lives in a fixed-size table decided at construction time
// (see Config); there is no runtime creation, deletion, or renaming of any
// kernel object. Application code addresses objects by small integer index.
package kernel

import "fmt"

// Status is the service-call return code. Zero is success; negative values
// name a specific failure. The numeric space mirrors the historical
// Nucleus SE return codes this kernel's semantics were distilled from —
// not a contract this package owes any caller, just a grounded choice
// instead of inventing arbitrary numbers.
type Status int

const (
	StatusSuccess Status = 0

	StatusInvalidTask   Status = -25
	StatusInvalidResume Status = -20
	StatusInvalidSuspend Status = -24

	StatusInvalidPool    Status = -16
	StatusInvalidPointer Status = -15
	StatusNoPartition    Status = -34

	StatusInvalidMailbox   Status = -10
	StatusMailboxEmpty     Status = -29
	StatusMailboxFull      Status = -30
	StatusMailboxWasReset  Status = -31

	StatusInvalidQueue  Status = -19
	StatusInvalidSize   Status = -22
	StatusQueueEmpty    Status = -45
	StatusQueueFull     Status = -46
	StatusQueueWasReset Status = -47

	StatusInvalidPipe  Status = -14
	StatusPipeEmpty    Status = -40
	StatusPipeFull     Status = -41
	StatusPipeWasReset Status = -42

	StatusInvalidSemaphore   Status = -21
	StatusUnavailable        Status = -51
	StatusSemaphoreWasReset  Status = -49

	StatusInvalidGroup     Status = -8
	StatusInvalidOperation Status = -13
	StatusNotPresent       Status = -36

	StatusInvalidTimer  Status = -26
	StatusInvalidEnable Status = -5
	StatusNotDisabled   Status = -35

	// StatusTaskWasReset is not part of the historical return-code space:
	// it is this port's resolution of spec Open Question 3 (task_reset
	// leaves the blocking-return slot undefined in the original; here it
	// is set to a reset-flavored code, symmetric with the other
	// object-was-reset codes, so a task resumed past an abandoned wait
	// loop observes a deliberate status instead of garbage).
	StatusTaskWasReset Status = -60
)

func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	if msg, ok := statusNames[s]; ok {
		return msg
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Error satisfies the error interface so a non-success Status can be
// returned and checked the idiomatic Go way (if err != nil) by callers
// who don't want to compare against StatusSuccess directly, while PLUS-
// style callers keep using the numeric value.
func (s Status) Error() string { return s.String() }

var statusNames = map[Status]string{
	StatusInvalidTask:      "invalid task index",
	StatusInvalidResume:    "task not pure-suspended",
	StatusInvalidSuspend:   "invalid suspend option",
	StatusInvalidPool:      "invalid partition pool index",
	StatusInvalidPointer:   "invalid pointer",
	StatusNoPartition:      "no partition available",
	StatusInvalidMailbox:   "invalid mailbox index",
	StatusMailboxEmpty:     "mailbox empty",
	StatusMailboxFull:      "mailbox full",
	StatusMailboxWasReset:  "mailbox was reset",
	StatusInvalidQueue:     "invalid queue index",
	StatusInvalidSize:      "invalid message size",
	StatusQueueEmpty:       "queue empty",
	StatusQueueFull:        "queue full",
	StatusQueueWasReset:    "queue was reset",
	StatusInvalidPipe:      "invalid pipe index",
	StatusPipeEmpty:        "pipe empty",
	StatusPipeFull:         "pipe full",
	StatusPipeWasReset:     "pipe was reset",
	StatusInvalidSemaphore: "invalid semaphore index",
	StatusUnavailable:      "unavailable",
	StatusSemaphoreWasReset: "semaphore was reset",
	StatusInvalidGroup:     "invalid event group index",
	StatusInvalidOperation: "invalid event group operation",
	StatusNotPresent:       "requested events not present",
	StatusInvalidTimer:     "invalid timer index",
	StatusInvalidEnable:    "invalid timer enable option",
	StatusNotDisabled:      "timer not disabled",
	StatusTaskWasReset:     "task was reset while waiting",
}

// SuspendOption selects whether a blocking-capable service call may
// suspend the caller. When a Config disables blocking, only NoSuspend is
// a legal argument.
type SuspendOption bool

const (
	NoSuspend SuspendOption = false
	Suspend   SuspendOption = true
)

// EventOp selects the event-group set/retrieve operation. OrConsume and
// AndConsume are recognized (for compatibility-surface parity) but always
// rejected with StatusInvalidOperation — Nucleus SE never implemented the
// consuming variants, and this kernel preserves that.
type EventOp uint8

const (
	EventOr EventOp = iota
	EventAnd
	EventOrConsume
	EventAndConsume
)

// ObjectClass names the category of kernel object a task can be blocked
// on. ClassNone means "not waiting on an object" (ready, pure-suspended,
// sleeping, finished, or terminated).
type ObjectClass uint8

const (
	ClassNone ObjectClass = iota
	ClassPartitionPool
	ClassMailbox
	ClassQueue
	ClassPipe
	ClassSemaphore
	ClassEventGroup
)

func (c ObjectClass) String() string {
	switch c {
	case ClassPartitionPool:
		return "partition-pool"
	case ClassMailbox:
		return "mailbox"
	case ClassQueue:
		return "queue"
	case ClassPipe:
		return "pipe"
	case ClassSemaphore:
		return "semaphore"
	case ClassEventGroup:
		return "event-group"
	default:
		return "none"
	}
}

// TaskState is the coarse state of a task. This is the tagged-variant
// replacement for the original packed status nibble (spec Design Notes):
// the semantic content (ready / suspended-for-some-reason / waiting on a
// specific object / terminal) is what mattered, not the bit packing.
type TaskState uint8

const (
	TaskReady TaskState = iota
	TaskPureSuspended
	TaskSleeping
	TaskWaiting
	TaskFinished
	TaskTerminated
)

func (s TaskState) String() string {
	switch s {
	case TaskReady:
		return "ready"
	case TaskPureSuspended:
		return "pure-suspended"
	case TaskSleeping:
		return "sleeping"
	case TaskWaiting:
		return "waiting"
	case TaskFinished:
		return "finished"
	case TaskTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// TaskStatus is a task's full status: its state, and — when State is
// TaskWaiting — the class and index of the object it is blocked on. This
// pair is what the original packed into a status byte's high/low nibble;
// §8's invariant ("blocked-count equals tasks whose status names that
// class and index") is phrased in exactly these terms.
type TaskStatus struct {
	State  TaskState
	Class  ObjectClass
	Object int
}

func readyStatus() TaskStatus { return TaskStatus{State: TaskReady} }

func waitingStatus(class ObjectClass, object int) TaskStatus {
	return TaskStatus{State: TaskWaiting, Class: class, Object: object}
}

// ExecutionContext records which context the kernel is running under:
// startup until Run, task once Run starts, and managed-ISR for the locked
// part of each tick pass. It is exposed through Kernel.Context; critical-
// section entry always locks regardless of it, and no reschedule decision
// reads it. There is no real hardware interrupt here — see cs.go and
// tick.go for how this is adapted to a goroutine-based runtime.
type ExecutionContext uint8

const (
	ContextTask ExecutionContext = iota
	ContextStartup
	ContextNativeISR
	ContextManagedISR
)

// SchedulerKind selects which of the four scheduler policies a Config
// builds.
type SchedulerKind uint8

const (
	SchedulerRunToCompletion SchedulerKind = iota
	SchedulerRoundRobin
	SchedulerTimeSlice
	SchedulerPriority
)

func (k SchedulerKind) String() string {
	switch k {
	case SchedulerRunToCompletion:
		return "run-to-completion"
	case SchedulerRoundRobin:
		return "round-robin"
	case SchedulerTimeSlice:
		return "time-slice"
	case SchedulerPriority:
		return "priority"
	default:
		return "unknown"
	}
}

// noTaskHint is the "no hint" sentinel passed to a priority scheduler's
// Reschedule when it should simply pick the highest-priority ready task,
// matching NUSE_NO_TASK's role in the original.
const noTaskHint = -1

// maxObjectsPerClass is the hard ceiling on any one object class (spec
// §1): 0-16 of each, 1-16 tasks.
const maxObjectsPerClass = 16
