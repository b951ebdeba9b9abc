package assistant

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

type Role string

const (
	RoleUser Role = "user"
	RoleTool Role = "tool"
)

type Message struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Sessions keeps the recent dialogue of each session in memory.
//
// Three bounds apply: at most maxHistory messages per session (oldest
// dropped first), sessions idle longer than ttl expire, and beyond
// maxSessions the least recently used session is evicted.
type Sessions struct {
	mu         sync.Mutex
	cache      *lru.LRU[string, []Message]
	maxHistory int
}

func NewSessions(maxSessions, maxHistory int, ttl time.Duration) *Sessions {
	return &Sessions{
		cache:      lru.NewLRU[string, []Message](maxSessions, nil, ttl),
		maxHistory: maxHistory,
	}
}

// Append adds msgs to session id and returns the bounded history.
// Every write renews the session's TTL.
func (s *Sessions) Append(id string, msgs ...Message) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, _ := s.cache.Get(id)
	next := make([]Message, 0, len(prev)+len(msgs))
	next = append(next, prev...)
	next = append(next, msgs...)
	if over := len(next) - s.maxHistory; over > 0 {
		next = next[over:]
	}
	s.cache.Add(id, next)
	return clone(next)
}

// Record appends a tool call and its answer to session id.
func (s *Sessions) Record(id string, req Request, output string, at time.Time) []Message {
	ask := req.Tool
	if req.WorkerID != "" {
		ask += " worker=" + string(req.WorkerID)
	}
	if req.Month != 0 {
		ask += fmt.Sprintf(" month=%d", req.Month)
	}
	if req.Year != 0 {
		ask += fmt.Sprintf(" year=%d", req.Year)
	}
	return s.Append(id,
		Message{Role: RoleUser, Content: ask, At: at},
		Message{Role: RoleTool, Content: output, At: at},
	)
}

// History returns the messages of session id, oldest first.
func (s *Sessions) History(id string) ([]Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	return clone(msgs), true
}

// Delete forgets session id and reports whether it existed.
func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Remove(id)
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	return s.cache.Len()
}

func clone(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
