package kernel

import (
	"testing"
	"time"
)

// TestSemaphoreHandoffAcrossRealGoroutines is one of the two tests in this
// package (with TestMailboxHandoffAcrossRealGoroutines below) that let
// task bodies actually run on their own goroutines; it exercises
// the real blockSelfLocked/switchToLocked baton handoff, rather than
// simulating a blocked waiter by mutating status directly (as every other
// blocking test in this package does via newBlockingTestKernel). Task 0
// blocks obtaining an empty semaphore; task 1 releases it and then
// relinquishes, handing the baton back to task 0 so it can actually resume
// and observe the successful obtain.
func TestSemaphoreHandoffAcrossRealGoroutines(t *testing.T) {
	done := make(chan Status, 1)

	cfg := Config{
		Scheduler:         SchedulerRoundRobin,
		ParameterChecking: true,
		BlockingEnabled:   true,
		Semaphores:        []SemaphoreConfig{{Initial: 0}},
		Tasks: []TaskConfig{
			{Entry: func(k *Kernel, self int) {
				done <- k.SemaphoreObtainSuspend(0)
			}},
			{Entry: func(k *Kernel, self int) {
				if s := k.SemaphoreRelease(0); s != StatusSuccess {
					panic(s)
				}
				k.Relinquish()
			}},
		},
	}

	k, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	k.Run()

	select {
	case s := <-done:
		if s != StatusSuccess {
			t.Fatalf("SemaphoreObtainSuspend returned %v, want StatusSuccess", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for task 0 to obtain the semaphore")
	}
}

// TestMailboxHandoffAcrossRealGoroutines exercises the same real-goroutine
// path for a mailbox instead of a semaphore: task 0 blocks receiving from
// an empty mailbox, task 1 sends into it and relinquishes.
func TestMailboxHandoffAcrossRealGoroutines(t *testing.T) {
	done := make(chan interface{}, 1)

	cfg := Config{
		Scheduler:         SchedulerRoundRobin,
		ParameterChecking: true,
		BlockingEnabled:   true,
		Mailboxes:         1,
		Tasks: []TaskConfig{
			{Entry: func(k *Kernel, self int) {
				msg, s := k.MailboxReceiveSuspend(0)
				if s != StatusSuccess {
					panic(s)
				}
				done <- msg
			}},
			{Entry: func(k *Kernel, self int) {
				if s := k.MailboxSend(0, "hello"); s != StatusSuccess {
					panic(s)
				}
				k.Relinquish()
			}},
		},
	}

	k, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	k.Run()

	select {
	case msg := <-done:
		if msg != "hello" {
			t.Fatalf("received %v, want \"hello\"", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for task 0 to receive the mailbox message")
	}
}
