package kernel

import "testing"

func TestSignalsSendReceiveIsDestructive(t *testing.T) {
	k := newBlockingTestKernel(t, 2, nil)

	if s := k.SignalsSend(1, 0x01); s != StatusSuccess {
		t.Fatalf("SignalsSend = %v", s)
	}
	if s := k.SignalsSend(1, 0x04); s != StatusSuccess {
		t.Fatalf("SignalsSend = %v", s)
	}

	k.active = 1
	if got := k.SignalsReceive(); got != 0x05 {
		t.Fatalf("SignalsReceive = %#x, want 0x05", got)
	}
	if got := k.SignalsReceive(); got != 0 {
		t.Fatalf("second SignalsReceive = %#x, want 0 (destructive read)", got)
	}
}

func TestSignalsSendInvalidTask(t *testing.T) {
	k := newBlockingTestKernel(t, 1, nil)
	if s := k.SignalsSend(9, 0x01); s != StatusInvalidTask {
		t.Fatalf("SignalsSend(9, ...) = %v, want StatusInvalidTask", s)
	}
}
