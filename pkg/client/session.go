package client

import "sync"

// TokenStore holds the bearer token on the client side.
type TokenStore interface {
	Token() string
	SetToken(token string)
	Clear()
}

// MemoryStore is a TokenStore kept in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func (s *MemoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *MemoryStore) Clear() {
	s.SetToken("")
}

// Session is the client-local view of a login.
type Session struct {
	Store TokenStore
}

// LoggedIn reports whether a token is held. It says nothing about validity.
func (s Session) LoggedIn() bool {
	return s.Store.Token() != ""
}

// Logout discards the token locally. No server call is made.
func (s Session) Logout() {
	s.Store.Clear()
}
