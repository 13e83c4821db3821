package kernel

import "testing"

func newRTCTestKernel(t *testing.T, n int) *Kernel {
	t.Helper()
	cfg := rtcConfig(n, func(k *Kernel, self int) {})
	k, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return k
}

// newBlockingTestKernel builds a round-robin, blocking-enabled kernel
// whose tasks never run (no goroutine is started): tests drive the
// kernel's methods directly and simulate a blocked task by mutating its
// status in-package, rather than actually parking a goroutine in
// blockSelfLocked. Round-robin's wakeTaskLocked never triggers a
// context swap (only the priority scheduler does), so this stays
// synchronous and single-goroutine throughout.
func newBlockingTestKernel(t *testing.T, n int, configure func(cfg *Config)) *Kernel {
	t.Helper()
	tasks := make([]TaskConfig, n)
	for i := range tasks {
		tasks[i] = TaskConfig{Entry: func(k *Kernel, self int) {}}
	}
	cfg := Config{
		Scheduler:         SchedulerRoundRobin,
		ParameterChecking: true,
		BlockingEnabled:   true,
		TaskSleepEnabled:  true,
		Tasks:             tasks,
	}
	if configure != nil {
		configure(&cfg)
	}
	k, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return k
}

func TestTaskSuspendResume(t *testing.T) {
	k := newBlockingTestKernel(t, 2, nil)

	if s := k.TaskSuspend(1); s != StatusSuccess {
		t.Fatalf("TaskSuspend(1) = %v", s)
	}
	st, _ := k.TaskStatusOf(1)
	if st.State != TaskPureSuspended {
		t.Fatalf("task 1 state = %v, want pure-suspended", st.State)
	}

	if s := k.TaskResume(1); s != StatusSuccess {
		t.Fatalf("TaskResume(1) = %v", s)
	}
	st, _ = k.TaskStatusOf(1)
	if st.State != TaskReady {
		t.Fatalf("task 1 state = %v, want ready", st.State)
	}

	// Resuming a task that isn't pure-suspended is invalid.
	if s := k.TaskResume(1); s != StatusInvalidResume {
		t.Fatalf("TaskResume on a ready task = %v, want StatusInvalidResume", s)
	}
}

func TestTaskSuspendInvalidIndex(t *testing.T) {
	k := newRTCTestKernel(t, 1)
	if s := k.TaskSuspend(5); s != StatusInvalidTask {
		t.Fatalf("TaskSuspend(5) = %v, want StatusInvalidTask", s)
	}
}

func TestTaskResetClearsStateAndDecrementsBlockedCount(t *testing.T) {
	k := newBlockingTestKernel(t, 2, func(cfg *Config) {
		cfg.Semaphores = []SemaphoreConfig{{Initial: 0}}
	})

	// Simulate task 1 having blocked itself waiting on semaphore 0.
	k.tasks[1].setStatus(waitingStatus(ClassSemaphore, 0))
	k.semaphores[0].blockedCount = 1
	k.tasks[1].signals = 7
	k.tasks[1].scheduleCount = 3

	if s := k.TaskReset(1); s != StatusSuccess {
		t.Fatalf("TaskReset(1) = %v", s)
	}

	if k.semaphores[0].blockedCount != 0 {
		t.Errorf("semaphore blockedCount = %d, want 0", k.semaphores[0].blockedCount)
	}
	st, _ := k.TaskStatusOf(1)
	if st.State != TaskPureSuspended {
		t.Errorf("task 1 state after reset = %v, want pure-suspended", st.State)
	}
	if k.tasks[1].signals != 0 {
		t.Errorf("signals after reset = %d, want 0", k.tasks[1].signals)
	}
	if k.tasks[1].scheduleCount != 0 {
		t.Errorf("scheduleCount after reset = %d, want 0", k.tasks[1].scheduleCount)
	}
	if k.tasks[1].blockReturn != StatusTaskWasReset {
		t.Errorf("blockReturn after reset = %v, want StatusTaskWasReset", k.tasks[1].blockReturn)
	}
}

func TestWakeLowestWaiterLocked(t *testing.T) {
	k := newBlockingTestKernel(t, 3, func(cfg *Config) {
		cfg.Mailboxes = 1
	})

	k.tasks[1].setStatus(waitingStatus(ClassMailbox, 0))
	k.tasks[2].setStatus(waitingStatus(ClassMailbox, 0))
	k.mailboxes[0].blockedCount = 2

	k.csEnter()
	woke := k.wakeLowestWaiterLocked(ClassMailbox, 0)
	k.csExit()

	if !woke {
		t.Fatal("expected a waiter to be woken")
	}
	st1, _ := k.TaskStatusOf(1)
	st2, _ := k.TaskStatusOf(2)
	if st1.State != TaskReady {
		t.Errorf("task 1 (lowest index waiter) should be ready, got %v", st1.State)
	}
	if st2.State != TaskWaiting {
		t.Errorf("task 2 should remain waiting, got %v", st2.State)
	}
}

func TestWakeAllWaitersLocked(t *testing.T) {
	k := newBlockingTestKernel(t, 3, func(cfg *Config) {
		cfg.Queues = []QueueConfig{{Capacity: 1}}
	})

	k.tasks[1].setStatus(waitingStatus(ClassQueue, 0))
	k.tasks[2].setStatus(waitingStatus(ClassQueue, 0))
	k.queues[0].blockedCount = 2

	k.csEnter()
	k.wakeAllWaitersLocked(ClassQueue, 0, StatusQueueWasReset)
	k.csExit()

	for _, i := range []int{1, 2} {
		st, _ := k.TaskStatusOf(i)
		if st.State != TaskReady {
			t.Errorf("task %d state = %v, want ready", i, st.State)
		}
		if k.tasks[i].blockReturn != StatusQueueWasReset {
			t.Errorf("task %d blockReturn = %v, want StatusQueueWasReset", i, k.tasks[i].blockReturn)
		}
	}
}
