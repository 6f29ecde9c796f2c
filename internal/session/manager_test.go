package session

import (
	"sync"
	"testing"
)

func TestTakeIsSingleShot(t *testing.T) {
	m := NewManager()
	m.Arm(10, Pending{Step: StepAddLink, Market: "ozon"})

	p, ok := m.Take(10)
	if !ok || p.Step != StepAddLink || p.Market != "ozon" {
		t.Fatalf("Take = (%+v, %v)", p, ok)
	}
	if _, ok := m.Take(10); ok {
		t.Fatal("second Take must miss")
	}
	if m.InProgress(10) {
		t.Fatal("step still armed after Take")
	}
}

func TestArmOverwrites(t *testing.T) {
	m := NewManager()
	m.Arm(10, Pending{Step: StepAccessRequest})
	m.Arm(10, Pending{Step: StepAddLink, Market: "wb"})

	p, ok := m.Take(10)
	if !ok || p.Step != StepAddLink || p.Market != "wb" {
		t.Fatalf("last writer must win, got (%+v, %v)", p, ok)
	}
}

func TestChatsAreIndependent(t *testing.T) {
	m := NewManager()
	m.Arm(1, Pending{Step: StepAddLink, Market: "ozon"})
	m.Arm(2, Pending{Step: StepAccessRequest})

	if p, _ := m.Take(1); p.Step != StepAddLink {
		t.Fatalf("chat 1 step = %q", p.Step)
	}
	if !m.InProgress(2) {
		t.Fatal("chat 2 step lost")
	}
}

func TestClear(t *testing.T) {
	m := NewManager()
	m.Arm(5, Pending{Step: StepAccessRequest})
	m.Clear(5)
	if m.InProgress(5) {
		t.Fatal("Clear did not drop the step")
	}
}

func TestConcurrentArmTake(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(2)
		chat := int64(i % 4)
		go func() {
			defer wg.Done()
			m.Arm(chat, Pending{Step: StepAddLink, Market: "ozon"})
		}()
		go func() {
			defer wg.Done()
			m.Take(chat)
		}()
	}
	wg.Wait()
}
