package telegram

import "testing"

func TestChatLimiterIsolatesChats(t *testing.T) {
	l := newChatLimiter(1)

	if !l.allow(1) {
		t.Fatal("first request for chat 1 should pass")
	}
	if l.allow(1) {
		t.Error("second request for chat 1 should be throttled")
	}
	if !l.allow(2) {
		t.Error("chat 2 has its own budget and should pass")
	}
}

func TestChatLimiterBurst(t *testing.T) {
	l := newChatLimiter(5)

	for i := 0; i < 5; i++ {
		if !l.allow(1) {
			t.Fatalf("request %d should fit in the burst", i+1)
		}
	}
	if l.allow(1) {
		t.Error("burst exhausted, request should be throttled")
	}
}
