package chat

import "sync"

// CommunityManager is the process-wide community registry.
type CommunityManager struct {
	mu          sync.RWMutex
	communities map[string]*Community
}

func NewCommunityManager() *CommunityManager {
	return &CommunityManager{communities: make(map[string]*Community)}
}

// Add registers a community. Returns false on id collision.
func (m *CommunityManager) Add(co *Community) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.communities[co.ID()]; ok {
		return false
	}
	m.communities[co.ID()] = co
	return true
}

// Remove deletes a community by id. Returns false if absent.
func (m *CommunityManager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.communities[id]; !ok {
		return false
	}
	delete(m.communities, id)
	return true
}

func (m *CommunityManager) Get(id string) (*Community, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	co, ok := m.communities[id]
	return co, ok
}

// Communities returns a snapshot of all communities.
func (m *CommunityManager) Communities() []*Community {
	m.mu.RLock()
	defer m.mu.RUnlock()
	communities := make([]*Community, 0, len(m.communities))
	for _, co := range m.communities {
		communities = append(communities, co)
	}
	return communities
}

// GetChannel resolves a channel inside a specific community.
func (m *CommunityManager) GetChannel(communityID, channelID string) (*Channel, bool) {
	co, ok := m.Get(communityID)
	if !ok {
		return nil, false
	}
	return co.Channels().Get(channelID)
}

// FindChannel scans all communities for a channel id and returns it with
// its owning community.
func (m *CommunityManager) FindChannel(channelID string) (*Channel, *Community, bool) {
	for _, co := range m.Communities() {
		if ch, ok := co.Channels().Get(channelID); ok {
			return ch, co, true
		}
	}
	return nil, nil, false
}
