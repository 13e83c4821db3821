package kernel

import "testing"

func TestEventGroupSetOrAnd(t *testing.T) {
	k := newBlockingTestKernel(t, 1, func(cfg *Config) {
		cfg.EventGroups = 1
	})

	if s := k.EventGroupSet(0, 0x0F, EventOr); s != StatusSuccess {
		t.Fatalf("EventGroupSet(or) = %v", s)
	}
	info, _ := k.EventGroupInformation(0)
	if info.EventFlags != 0x0F {
		t.Fatalf("flags = %#x, want 0x0F", info.EventFlags)
	}

	if s := k.EventGroupSet(0, 0x03, EventAnd); s != StatusSuccess {
		t.Fatalf("EventGroupSet(and) = %v", s)
	}
	info, _ = k.EventGroupInformation(0)
	if info.EventFlags != 0x03 {
		t.Fatalf("flags after AND = %#x, want 0x03", info.EventFlags)
	}
}

func TestEventGroupSetInvalidOperation(t *testing.T) {
	k := newBlockingTestKernel(t, 1, func(cfg *Config) { cfg.EventGroups = 1 })
	if s := k.EventGroupSet(0, 0x1, EventOrConsume); s != StatusInvalidOperation {
		t.Fatalf("EventGroupSet with consume op = %v, want StatusInvalidOperation", s)
	}
	info, _ := k.EventGroupInformation(0)
	if info.EventFlags != 0 {
		t.Fatalf("flags should be untouched after a rejected operation, got %#x", info.EventFlags)
	}
}

func TestEventGroupRetrieveOrAnd(t *testing.T) {
	k := newBlockingTestKernel(t, 1, func(cfg *Config) { cfg.EventGroups = 1 })
	k.EventGroupSet(0, 0x06, EventOr)

	if matched, s := k.EventGroupRetrieve(0, 0x01, EventOr); s != StatusNotPresent || matched != 0 {
		t.Fatalf("EventGroupRetrieve(or, 0x01) = (%v, %v), want (0, StatusNotPresent)", matched, s)
	}
	if matched, s := k.EventGroupRetrieve(0, 0x02, EventOr); s != StatusSuccess || matched != 0x02 {
		t.Fatalf("EventGroupRetrieve(or, 0x02) = (%v, %v), want (0x02, success)", matched, s)
	}
	if _, s := k.EventGroupRetrieve(0, 0x06, EventAnd); s != StatusSuccess {
		t.Fatalf("EventGroupRetrieve(and, 0x06) = %v, want success", s)
	}
	if _, s := k.EventGroupRetrieve(0, 0x07, EventAnd); s != StatusNotPresent {
		t.Fatalf("EventGroupRetrieve(and, 0x07) = %v, want StatusNotPresent", s)
	}
}

func TestEventGroupSetWakesAllWaitersRegardlessOfMatch(t *testing.T) {
	k := newBlockingTestKernel(t, 2, func(cfg *Config) { cfg.EventGroups = 1 })
	k.tasks[1].setStatus(waitingStatus(ClassEventGroup, 0))
	k.eventGroups[0].blockedCount = 1

	// Clearing every bit can never satisfy a waiter's OR request, but the
	// drain-all-waiters policy (spec Open Question 1) wakes it anyway.
	if s := k.EventGroupSet(0, 0x00, EventAnd); s != StatusSuccess {
		t.Fatalf("EventGroupSet = %v", s)
	}
	st, _ := k.TaskStatusOf(1)
	if st.State != TaskReady {
		t.Fatalf("waiter state = %v, want ready (drain-all policy)", st.State)
	}
	if k.eventGroups[0].blockedCount != 0 {
		t.Fatalf("blockedCount = %d, want 0", k.eventGroups[0].blockedCount)
	}
}
