// Package session tracks the single pending dialog step per chat: the
// continuation that will consume the next free-text message from that chat.
package session

import "sync"

// Step identifies which capture procedure is armed for a chat.
type Step string

const (
	// StepNone indicates there is no pending step for the chat.
	StepNone Step = ""
	// StepAccessRequest awaits the introduction text of an unknown chat.
	StepAccessRequest Step = "access_request"
	// StepAddLink awaits a parser link for the market bound in Args.
	StepAddLink Step = "add_link"
)

// Pending is an armed continuation with its bound arguments.
type Pending struct {
	Step Step
	// Market is the bound target market, when the step needs one.
	Market string
}

// Manager arms and consumes pending steps. At most one step is armed per
// chat; arming again overwrites silently (the UI only ever arms one flow per
// user action, so last-writer-wins is acceptable).
type Manager struct {
	mu      sync.Mutex
	pending map[int64]Pending
}

// NewManager constructs an empty in-memory manager.
func NewManager() *Manager {
	return &Manager{pending: make(map[int64]Pending)}
}

// Arm registers the continuation for the chat, replacing any previous one.
func (m *Manager) Arm(chatID int64, p Pending) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[chatID] = p
}

// Take returns the armed step for the chat and clears it. Consumption is
// single-shot: the handler either re-arms for another iteration or lets the
// step lapse.
func (m *Manager) Take(chatID int64) (Pending, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pending[chatID]
	if ok {
		delete(m.pending, chatID)
	}
	return p, ok
}

// InProgress reports whether the chat has an armed step.
func (m *Manager) InProgress(chatID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pending[chatID]
	return ok
}

// Clear drops any armed step for the chat.
func (m *Manager) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, chatID)
}
