package snowflake

import (
	"sync"
	"testing"
)

func TestNode_Generate_Unique(t *testing.T) {
	node, err := NewNode(1)
	if err != nil {
		t.Fatalf("NewNode failed: %v", err)
	}

	seen := make(map[ID]bool)
	for i := 0; i < 10000; i++ {
		id := node.Generate()
		if seen[id] {
			t.Fatalf("Duplicate ID generated: %d", id)
		}
		seen[id] = true
	}
}

func TestNode_Generate_Monotonic(t *testing.T) {
	node, _ := NewNode(1)

	var prev ID
	for i := 0; i < 1000; i++ {
		id := node.Generate()
		if id <= prev {
			t.Fatalf("IDs not monotonic: %d after %d", id, prev)
		}
		prev = id
	}
}

func TestNode_Generate_Concurrent(t *testing.T) {
	node, _ := NewNode(1)

	const goroutines = 8
	const perGoroutine = 1000

	var mu sync.Mutex
	seen := make(map[ID]bool)
	var wg sync.WaitGroup

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]ID, 0, perGoroutine)
			for i := 0; i < perGoroutine; i++ {
				ids = append(ids, node.Generate())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				if seen[id] {
					t.Errorf("Duplicate ID generated: %d", id)
				}
				seen[id] = true
			}
		}()
	}
	wg.Wait()

	if len(seen) != goroutines*perGoroutine {
		t.Errorf("Expected %d unique IDs, got %d", goroutines*perGoroutine, len(seen))
	}
}

func TestNewNode_InvalidNodeID(t *testing.T) {
	// 超出范围的 nodeID 回退为 1
	node, err := NewNode(maxNodeID + 1)
	if err != nil {
		t.Fatalf("NewNode failed: %v", err)
	}
	if node.nodeID != 1 {
		t.Errorf("Expected fallback nodeID 1, got %d", node.nodeID)
	}
}
