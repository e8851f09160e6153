package cache

import (
	"sync"
	"testing"
)

func TestInvalidator_NotifiesAllListeners(t *testing.T) {
	inv := NewInvalidator()

	var a, b int
	unregA := inv.Register(MessagesKey(42), func() { a++ })
	unregB := inv.Register(MessagesKey(42), func() { b++ })
	defer unregA()
	defer unregB()

	inv.Invalidate(MessagesKey(42))

	if a != 1 || b != 1 {
		t.Errorf("Expected both listeners invoked once, got a=%d b=%d", a, b)
	}
}

func TestInvalidator_KeyIsolation(t *testing.T) {
	inv := NewInvalidator()

	var called int
	unreg := inv.Register(MessagesKey(1), func() { called++ })
	defer unreg()

	inv.Invalidate(MessagesKey(2))
	inv.Invalidate(ConversationsKey(1))

	if called != 0 {
		t.Errorf("Listener invoked for unrelated keys: %d", called)
	}
}

func TestInvalidator_Unregister(t *testing.T) {
	inv := NewInvalidator()

	var called int
	unreg := inv.Register(MessagesKey(5), func() { called++ })

	inv.Invalidate(MessagesKey(5))
	unreg()
	unreg() // 重复注销是空操作
	inv.Invalidate(MessagesKey(5))

	if called != 1 {
		t.Errorf("Expected exactly 1 invocation, got %d", called)
	}
	if got := inv.ListenerCount(MessagesKey(5)); got != 0 {
		t.Errorf("Expected 0 listeners after unregister, got %d", got)
	}
}

func TestInvalidator_ConcurrentRegisterInvalidate(t *testing.T) {
	inv := NewInvalidator()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unreg := inv.Register(ConversationsKey(1), func() {})
			unreg()
		}()
		go func() {
			defer wg.Done()
			inv.Invalidate(ConversationsKey(1))
		}()
	}
	wg.Wait()

	if got := inv.ListenerCount(ConversationsKey(1)); got != 0 {
		t.Errorf("Expected 0 listeners after all unregistered, got %d", got)
	}
}
