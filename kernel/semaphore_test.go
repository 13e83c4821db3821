package kernel

import "testing"

func TestSemaphoreObtainRelease(t *testing.T) {
	k := newBlockingTestKernel(t, 1, func(cfg *Config) {
		cfg.Semaphores = []SemaphoreConfig{{Initial: 1}}
	})

	if s := k.SemaphoreObtain(0); s != StatusSuccess {
		t.Fatalf("SemaphoreObtain = %v", s)
	}
	if s := k.SemaphoreObtain(0); s != StatusUnavailable {
		t.Fatalf("SemaphoreObtain on exhausted semaphore = %v, want StatusUnavailable", s)
	}
	if s := k.SemaphoreRelease(0); s != StatusSuccess {
		t.Fatalf("SemaphoreRelease = %v", s)
	}
	if s := k.SemaphoreObtain(0); s != StatusSuccess {
		t.Fatalf("SemaphoreObtain after release = %v", s)
	}
}

func TestSemaphoreReleaseClampsAt255(t *testing.T) {
	k := newBlockingTestKernel(t, 1, func(cfg *Config) {
		cfg.Semaphores = []SemaphoreConfig{{Initial: 255}}
	})
	if s := k.SemaphoreRelease(0); s != StatusUnavailable {
		t.Fatalf("SemaphoreRelease at 255 = %v, want StatusUnavailable", s)
	}
}

func TestSemaphoreReleaseWakesLowestWaiter(t *testing.T) {
	k := newBlockingTestKernel(t, 3, func(cfg *Config) {
		cfg.Semaphores = []SemaphoreConfig{{Initial: 0}}
	})

	k.tasks[1].setStatus(waitingStatus(ClassSemaphore, 0))
	k.tasks[2].setStatus(waitingStatus(ClassSemaphore, 0))
	k.semaphores[0].blockedCount = 2

	if s := k.SemaphoreRelease(0); s != StatusSuccess {
		t.Fatalf("SemaphoreRelease = %v", s)
	}

	st1, _ := k.TaskStatusOf(1)
	st2, _ := k.TaskStatusOf(2)
	if st1.State != TaskReady {
		t.Errorf("task 1 should be woken, state = %v", st1.State)
	}
	if st2.State != TaskWaiting {
		t.Errorf("task 2 should remain waiting, state = %v", st2.State)
	}
	if k.semaphores[0].blockedCount != 1 {
		t.Errorf("blockedCount = %d, want 1", k.semaphores[0].blockedCount)
	}
}

func TestSemaphoreResetWakesEveryoneAndSetsCounter(t *testing.T) {
	k := newBlockingTestKernel(t, 2, func(cfg *Config) {
		cfg.Semaphores = []SemaphoreConfig{{Initial: 0}}
	})
	k.tasks[1].setStatus(waitingStatus(ClassSemaphore, 0))
	k.semaphores[0].blockedCount = 1

	if s := k.SemaphoreReset(0, 3); s != StatusSuccess {
		t.Fatalf("SemaphoreReset = %v", s)
	}
	info, _ := k.SemaphoreInformation(0)
	if info.Counter != 3 {
		t.Fatalf("counter after reset = %d, want 3", info.Counter)
	}
	if k.tasks[1].blockReturn != StatusSemaphoreWasReset {
		t.Fatalf("blockReturn after reset = %v, want StatusSemaphoreWasReset", k.tasks[1].blockReturn)
	}
}
