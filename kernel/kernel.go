package kernel

import (
	"fmt"
	"log"
)

// Kernel is the running instance: the object tables, the scheduler, and
// the glue that lets task goroutines and the tick service mutate them
// safely. Construct one with New and start it with Run.
type Kernel struct {
	cfg Config
	cs  criticalSection
	log *log.Logger

	scheduler Scheduler

	tasks  []*taskRecord
	active int
	next   int

	execContext ExecutionContext

	clock              uint32
	clockEnabled       bool
	timeSliceRemaining uint32

	partitionPools []*partitionPool
	mailboxes      []*mailboxObj
	queues         []*queueObj
	pipes          []*pipeObj
	semaphores     []*semaphoreObj
	eventGroups    []*eventGroupObj
	timers         []*timerObj

	started  bool
	shutdown chan struct{}
}

// New validates cfg, builds every object table, and returns a Kernel
// ready for Run. No goroutine runs until Run is called.
func New(cfg Config, logger *log.Logger) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(log.Writer(), "nuse: ", log.LstdFlags)
	}

	k := &Kernel{
		cfg:          cfg,
		log:          logger,
		execContext:  ContextStartup,
		clockEnabled: cfg.SystemClockEnabled,
		shutdown:     make(chan struct{}),
	}

	k.scheduler = newScheduler(cfg.Scheduler)

	k.initAll()

	if cfg.Scheduler == SchedulerTimeSlice {
		k.timeSliceRemaining = cfg.TimeSliceTicks
	}

	k.log.Printf("initialized: scheduler=%s tasks=%d pools=%d mailboxes=%d queues=%d pipes=%d semaphores=%d groups=%d timers=%d",
		cfg.Scheduler, len(cfg.Tasks), len(cfg.PartitionPools), cfg.Mailboxes,
		len(cfg.Queues), len(cfg.Pipes), len(cfg.Semaphores), cfg.EventGroups, len(cfg.Timers))

	return k, nil
}

// ActiveTask returns the index of the task currently selected to run.
func (k *Kernel) ActiveTask() int {
	return k.active
}

// Context reports the execution context the kernel believes it is
// currently running under. See types.go's ExecutionContext.
func (k *Kernel) Context() ExecutionContext {
	return k.execContext
}

// Clock returns the current tick count. Meaningful only when the Config
// enabled the system clock; otherwise it stays at zero.
func (k *Kernel) Clock() uint32 {
	return k.clock
}

func (k *Kernel) checkTask(task int) Status {
	if k.cfg.ParameterChecking && (task < 0 || task >= len(k.tasks)) {
		return StatusInvalidTask
	}
	return StatusSuccess
}

// Run starts the scheduler. Under run-to-completion it blocks, polling
// the task table round after round (the original's infinite loop), until
// Shutdown is called — the caller is expected to run it on its own
// goroutine if it needs to do anything else. Under the other three
// schedulers it starts one goroutine per task, hands control to the first
// task the scheduler picks, and returns; the tasks keep running on their
// own goroutines.
func (k *Kernel) Run() {
	if k.started {
		panic("kernel: Run called twice")
	}
	k.started = true
	k.execContext = ContextTask

	if k.cfg.Scheduler == SchedulerRunToCompletion {
		k.runRTC()
		return
	}
	k.runPreemptible()
}

func (k *Kernel) runRTC() {
	if k.cfg.BlockingEnabled {
		panic("kernel: run-to-completion scheduler built with blocking enabled")
	}
	for {
		select {
		case <-k.shutdown:
			return
		default:
		}
		for i, t := range k.tasks {
			if t.status().State != TaskReady {
				continue
			}
			k.active = i
			t.scheduleCount++
			t.entry(k, i)
		}
	}
}

func (k *Kernel) runPreemptible() {
	for i, t := range k.tasks {
		t := t
		i := i
		go func() {
			<-t.resume
			t.entry(k, i)
			k.csEnter()
			t.setStatus(TaskStatus{State: TaskFinished})
			k.finishTaskLocked()
		}()
	}
	first := k.scheduler.start(k)
	k.active = first
	k.tasks[first].scheduleCount++
	k.tasks[first].resume <- struct{}{}
}

// finishTaskLocked is called once a task's entry point has returned for
// good, with the critical section held and that task already marked
// TaskFinished. Unlike an ordinary reschedule (rescheduleLocked), the
// finishing goroutine has nothing left to do and must not park itself
// waiting to be resumed — switchToLocked's handoff assumes its caller
// will eventually be resumed, which a finished task never is — so this
// hands the CPU straight to the next ready task (if any) and returns
// without parking. If no task is ready, every remaining task must be
// suspended, sleeping, or itself finished, and there is nothing to run;
// the critical section is simply released.
func (k *Kernel) finishTaskLocked() {
	next, ok := firstReadyTaskOrNone(k)
	if !ok {
		k.csExit()
		return
	}
	k.active = next
	k.tasks[next].scheduleCount++
	k.csExit()
	k.tasks[next].resume <- struct{}{}
}

// Shutdown signals the run-to-completion loop to stop after its current
// pass and makes RunTickService return. Non-RTC schedulers run task
// goroutines that, by design, never return control to Kernel except
// through blocking calls, so Shutdown does not stop them; stopping a live
// preemptible kernel's tasks is a matter of having every task's entry
// point observe its own exit condition.
func (k *Kernel) Shutdown() {
	select {
	case <-k.shutdown:
	default:
		close(k.shutdown)
	}
}

func (k *Kernel) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("kernel: "+format, args...)
}
