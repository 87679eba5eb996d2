package chat

import "sync"

// MaxChannels caps how many channels a single community may own.
const MaxChannels = 50

// ChannelManager is the keyed channel collection owned by one community.
type ChannelManager struct {
	mu       sync.RWMutex
	channels map[string]*Channel
}

func NewChannelManager() *ChannelManager {
	return &ChannelManager{channels: make(map[string]*Channel)}
}

// Add registers a channel. Returns false on id collision or when the
// community is at its channel cap.
func (m *ChannelManager) Add(ch *Channel) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.channels) >= MaxChannels {
		return false
	}
	if _, ok := m.channels[ch.ID()]; ok {
		return false
	}
	m.channels[ch.ID()] = ch
	return true
}

// Remove deletes a channel by id. Returns false if absent.
func (m *ChannelManager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.channels[id]; !ok {
		return false
	}
	delete(m.channels, id)
	return true
}

func (m *ChannelManager) Get(id string) (*Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[id]
	return ch, ok
}

// Channels returns a snapshot of all channels.
func (m *ChannelManager) Channels() []*Channel {
	m.mu.RLock()
	defer m.mu.RUnlock()
	channels := make([]*Channel, 0, len(m.channels))
	for _, ch := range m.channels {
		channels = append(channels, ch)
	}
	return channels
}

func (m *ChannelManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.channels)
}
