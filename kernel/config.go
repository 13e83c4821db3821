package kernel

import "fmt"

// TaskEntry is a task's compile-time entry point. Under the
// run-to-completion scheduler it is called once per round and must
// return without blocking. Under the other three schedulers it runs on
// its own goroutine and is expected to loop for the task's lifetime,
// yielding only through the Kernel's blocking service calls,
// Relinquish, Sleep, Checkpoint, or by returning (which finishes the
// task).
type TaskEntry func(k *Kernel, self int)

// TaskConfig describes one task table entry. Under the priority
// scheduler a task's index is its priority, 0 highest.
type TaskConfig struct {
	Entry TaskEntry
}

// PartitionPoolConfig describes one partition pool.
type PartitionPoolConfig struct {
	Partitions    int // capacity: number of fixed partitions in the pool
	PartitionSize int // payload bytes per partition, header excluded
}

// QueueConfig describes one fixed-capacity message queue.
type QueueConfig struct {
	Capacity int // number of pointer-sized entries
}

// PipeConfig describes one fixed-capacity byte-message pipe.
type PipeConfig struct {
	Capacity    int // number of messages
	MessageSize int // bytes per message
}

// SemaphoreConfig describes one counting semaphore.
type SemaphoreConfig struct {
	Initial int // 0..255
}

// TimerConfig describes one application timer.
type TimerConfig struct {
	AutoEnable bool // whether the timer starts running at init
	Initial    uint32
	Reschedule uint32 // 0 means disable-on-expiration

	// OnExpire, if set, is invoked once per expiration with the timer's
	// configured Param and the Kernel itself, so it can make ordinary
	// service calls (e.g. SignalsSend) the same way a task body would.
	// It is always called with the critical section released — see
	// tickOnce in tick.go — so a service call made from it is a normal,
	// non-reentrant kernel call rather than a self-deadlock.
	OnExpire func(k *Kernel, param int)
	Param    int
}

// Config is the compile-time Config Matrix (spec §2.1): the complete set
// of decisions that would, in the original, be resolved by preprocessor
// macros. A Config is validated once, at New, and never mutated
// afterward — there is no runtime reconfiguration surface, matching the
// kernel's no-dynamic-object-creation design.
type Config struct {
	Scheduler SchedulerKind

	// ParameterChecking mirrors api_parameter_checking: when true,
	// argument validation runs before any side effect and failures
	// return immediately.
	ParameterChecking bool

	// BlockingEnabled mirrors the suspend-enabled build flag. The
	// run-to-completion scheduler requires this false; the priority
	// scheduler requires it true.
	BlockingEnabled bool

	// SystemClockEnabled gates the monotonic tick counter (clock.go).
	SystemClockEnabled bool

	// TaskSleepEnabled gates task_sleep and the per-tick timeout scan.
	TaskSleepEnabled bool

	// TimeSliceTicks is the reload value for the time-slice scheduler's
	// countdown. Ignored by the other three schedulers.
	TimeSliceTicks uint32

	Tasks          []TaskConfig
	PartitionPools []PartitionPoolConfig
	Mailboxes      int
	Queues         []QueueConfig
	Pipes          []PipeConfig
	Semaphores     []SemaphoreConfig
	EventGroups    int
	Timers         []TimerConfig
}

// Validate checks every count against the spec's 0-16/1-16 ceilings and
// the cross-field rules tying blocking to scheduler choice. It performs
// no mutation; New calls it before touching any table.
func (c *Config) Validate() error {
	if len(c.Tasks) < 1 || len(c.Tasks) > maxObjectsPerClass {
		return fmt.Errorf("kernel: task count %d out of range 1..%d", len(c.Tasks), maxObjectsPerClass)
	}
	for i, t := range c.Tasks {
		if t.Entry == nil {
			return fmt.Errorf("kernel: task %d has a nil entry point", i)
		}
	}
	if len(c.PartitionPools) > maxObjectsPerClass {
		return fmt.Errorf("kernel: partition pool count %d exceeds %d", len(c.PartitionPools), maxObjectsPerClass)
	}
	for i, p := range c.PartitionPools {
		if p.Partitions < 1 {
			return fmt.Errorf("kernel: partition pool %d has non-positive capacity %d", i, p.Partitions)
		}
		if p.PartitionSize < 1 {
			return fmt.Errorf("kernel: partition pool %d has non-positive partition size %d", i, p.PartitionSize)
		}
	}
	if c.Mailboxes < 0 || c.Mailboxes > maxObjectsPerClass {
		return fmt.Errorf("kernel: mailbox count %d out of range 0..%d", c.Mailboxes, maxObjectsPerClass)
	}
	if len(c.Queues) > maxObjectsPerClass {
		return fmt.Errorf("kernel: queue count %d exceeds %d", len(c.Queues), maxObjectsPerClass)
	}
	for i, q := range c.Queues {
		if q.Capacity < 1 {
			return fmt.Errorf("kernel: queue %d has non-positive capacity %d", i, q.Capacity)
		}
	}
	if len(c.Pipes) > maxObjectsPerClass {
		return fmt.Errorf("kernel: pipe count %d exceeds %d", len(c.Pipes), maxObjectsPerClass)
	}
	for i, p := range c.Pipes {
		if p.Capacity < 1 {
			return fmt.Errorf("kernel: pipe %d has non-positive capacity %d", i, p.Capacity)
		}
		if p.MessageSize < 1 {
			return fmt.Errorf("kernel: pipe %d has non-positive message size %d", i, p.MessageSize)
		}
	}
	if len(c.Semaphores) > maxObjectsPerClass {
		return fmt.Errorf("kernel: semaphore count %d exceeds %d", len(c.Semaphores), maxObjectsPerClass)
	}
	for i, s := range c.Semaphores {
		if s.Initial < 0 || s.Initial > 255 {
			return fmt.Errorf("kernel: semaphore %d initial value %d out of range 0..255", i, s.Initial)
		}
	}
	if c.EventGroups < 0 || c.EventGroups > maxObjectsPerClass {
		return fmt.Errorf("kernel: event group count %d out of range 0..%d", c.EventGroups, maxObjectsPerClass)
	}
	if len(c.Timers) > maxObjectsPerClass {
		return fmt.Errorf("kernel: timer count %d exceeds %d", len(c.Timers), maxObjectsPerClass)
	}
	for i, t := range c.Timers {
		if t.AutoEnable && t.Initial == 0 {
			return fmt.Errorf("kernel: timer %d is auto-enabled with a zero initial value", i)
		}
	}

	switch c.Scheduler {
	case SchedulerRunToCompletion:
		if c.BlockingEnabled {
			return fmt.Errorf("kernel: run-to-completion scheduler forbids blocking calls at build time")
		}
	case SchedulerPriority:
		if !c.BlockingEnabled {
			return fmt.Errorf("kernel: priority scheduler requires blocking to be enabled")
		}
	case SchedulerTimeSlice:
		if c.TimeSliceTicks == 0 {
			return fmt.Errorf("kernel: time-slice scheduler requires a positive TimeSliceTicks")
		}
	case SchedulerRoundRobin:
		// no additional constraint
	default:
		return fmt.Errorf("kernel: unknown scheduler kind %d", c.Scheduler)
	}

	return nil
}
