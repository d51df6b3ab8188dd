package cursorstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Alp4ka/pagekit"
)

// Memory keeps positions in process. Entries never expire.
type Memory struct {
	mu        sync.RWMutex
	positions map[string]pagekit.Position
}

func NewMemory() *Memory {
	return &Memory{positions: make(map[string]pagekit.Position)}
}

func (m *Memory) Store(_ context.Context, position pagekit.Position) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := uuid.NewString()
	for {
		if _, taken := m.positions[name]; !taken {
			break
		}
		name = uuid.NewString()
	}
	m.positions[name] = position.Clone()

	return name, nil
}

func (m *Memory) Retrieve(_ context.Context, name string) (pagekit.Position, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	position, ok := m.positions[name]
	if !ok {
		return nil, false, nil
	}

	return position.Clone(), true, nil
}

func (m *Memory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.positions, name)
	m.mu.Unlock()

	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.positions = make(map[string]pagekit.Position)
	m.mu.Unlock()

	return nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.positions), nil
}

var _ pagekit.CursorStorage = (*Memory)(nil)
