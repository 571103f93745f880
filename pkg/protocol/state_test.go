package protocol

import "testing"

func TestDispatcherRoutesByStateAndID(t *testing.T) {
	d := NewDispatcher(nil)
	var got []byte
	d.Register(StateHandshaking, HandshakeID, func(payload []byte) error {
		got = payload
		return nil
	})

	d.Dispatch(HandshakeID, []byte{1, 2, 3})
	if string(got) != "\x01\x02\x03" {
		t.Fatalf("handler not invoked with expected payload, got %v", got)
	}

	d.SetState(StateLogin)
	got = nil
	d.Dispatch(HandshakeID, []byte{9})
	if got != nil {
		t.Fatal("handler registered for a different state must not fire")
	}
}

func TestDispatcherIgnoresUnknownPacket(t *testing.T) {
	d := NewDispatcher(nil)
	d.Dispatch(0x7F, []byte{1})
}

func TestDispatcherHandlerErrorDoesNotPanic(t *testing.T) {
	d := NewDispatcher(nil)
	calls := 0
	d.Register(StateHandshaking, 1, func(payload []byte) error {
		calls++
		return ErrBufferUnderrun
	})
	d.Dispatch(1, nil)
	if calls != 1 {
		t.Fatalf("handler called %d times, want 1", calls)
	}
}
