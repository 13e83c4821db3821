package kernel

import "testing"

func TestQueueSendReceiveOrdering(t *testing.T) {
	k := newBlockingTestKernel(t, 1, func(cfg *Config) {
		cfg.Queues = []QueueConfig{{Capacity: 2}}
	})

	if s := k.QueueSend(0, 1); s != StatusSuccess {
		t.Fatalf("QueueSend = %v", s)
	}
	if s := k.QueueSend(0, 2); s != StatusSuccess {
		t.Fatalf("QueueSend = %v", s)
	}
	if s := k.QueueSend(0, 3); s != StatusQueueFull {
		t.Fatalf("QueueSend on full queue = %v, want StatusQueueFull", s)
	}

	v, s := k.QueueReceive(0)
	if s != StatusSuccess || v != 1 {
		t.Fatalf("QueueReceive = (%v, %v), want (1, success)", v, s)
	}
	v, s = k.QueueReceive(0)
	if s != StatusSuccess || v != 2 {
		t.Fatalf("QueueReceive = (%v, %v), want (2, success)", v, s)
	}
	if _, s := k.QueueReceive(0); s != StatusQueueEmpty {
		t.Fatalf("QueueReceive on empty queue = %v, want StatusQueueEmpty", s)
	}
}

func TestQueueJamPrependsAtTail(t *testing.T) {
	k := newBlockingTestKernel(t, 1, func(cfg *Config) {
		cfg.Queues = []QueueConfig{{Capacity: 2}}
	})

	if s := k.QueueSend(0, "a"); s != StatusSuccess {
		t.Fatalf("QueueSend = %v", s)
	}
	if s := k.QueueJam(0, "b"); s != StatusSuccess {
		t.Fatalf("QueueJam = %v", s)
	}

	v, _ := k.QueueReceive(0)
	if v != "b" {
		t.Fatalf("first item received = %v, want %q (jammed item)", v, "b")
	}
	v, _ = k.QueueReceive(0)
	if v != "a" {
		t.Fatalf("second item received = %v, want %q", v, "a")
	}
}

func TestQueueInformation(t *testing.T) {
	k := newBlockingTestKernel(t, 1, func(cfg *Config) {
		cfg.Queues = []QueueConfig{{Capacity: 4}}
	})
	k.QueueSend(0, 1)

	info, s := k.QueueInformation(0)
	if s != StatusSuccess {
		t.Fatalf("QueueInformation = %v", s)
	}
	if info.Capacity != 4 || info.Messages != 1 || info.Available != 3 {
		t.Fatalf("QueueInformation = %+v, unexpected", info)
	}
}
