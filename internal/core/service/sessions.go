package service

import (
	"context"
	"imgtool/internal/core/domain"
	"imgtool/internal/core/port"
	"imgtool/internal/core/workflow"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Session holds the workflows of one chat. Resize and Convert never share state.
type Session struct {
	ChatID         int64
	Resize         *workflow.ResizeWorkflow
	ResizeSurface  port.ChatSurface
	Convert        *workflow.ConvertWorkflow
	ConvertSurface port.ChatSurface

	resizeMu  sync.Mutex
	convertMu sync.Mutex
	lastUsed  time.Time
}

// Dependencies are shared by all sessions.
type Dependencies struct {
	Transport port.Transport
	Handles   port.HandleStore
	Previewer port.Previewer
	// Surface creates the surface of one workflow in the given chat.
	Surface func(chatID int64) port.ChatSurface
}

func NewSession(chatID int64, deps Dependencies) *Session {
	rs := deps.Surface(chatID)
	cs := deps.Surface(chatID)

	return &Session{
		ChatID:         chatID,
		Resize:         workflow.NewResize(deps.Transport, rs, deps.Handles, deps.Previewer),
		ResizeSurface:  rs,
		Convert:        workflow.NewConvert(deps.Transport, cs, deps.Handles, deps.Previewer),
		ConvertSurface: cs,
		lastUsed:       time.Now(),
	}
}

// AcquireResize claims the resize control. It fails while a resize is in flight in this chat.
func (s *Session) AcquireResize() (release func(), ok bool) {
	if !s.resizeMu.TryLock() {
		return nil, false
	}
	return s.resizeMu.Unlock, true
}

// AcquireConvert claims the convert control. It fails while a conversion is in flight in this chat.
func (s *Session) AcquireConvert() (release func(), ok bool) {
	if !s.convertMu.TryLock() {
		return nil, false
	}
	return s.convertMu.Unlock, true
}

// busy reports whether a command holds one of the controls or a submission is in flight.
func (s *Session) busy() bool {
	for _, mu := range []*sync.Mutex{&s.resizeMu, &s.convertMu} {
		if !mu.TryLock() {
			return true
		}
		mu.Unlock()
	}

	return s.Resize.Phase().Busy() || s.Convert.Phase().Busy()
}

func (s *Session) Close() {
	s.Resize.Close()
	s.Convert.Close()
}

// Sessions creates sessions on first use and drops the ones left idle.
type Sessions struct {
	deps  Dependencies
	ttl   time.Duration
	mutex sync.Mutex
	chats map[int64]*Session
}

func NewSessions(deps Dependencies, ttl time.Duration) *Sessions {
	return &Sessions{
		deps:  deps,
		ttl:   ttl,
		chats: make(map[int64]*Session),
	}
}

func (s *Sessions) Get(chatID int64) *Session {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session, ok := s.chats[chatID]
	if !ok {
		log.Debug().Int64("chatId", chatID).Msg("creating session")
		session = NewSession(chatID, s.deps)
		s.chats[chatID] = session
	}
	session.lastUsed = time.Now()

	return session
}

func (s *Sessions) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.chats)
}

// Evict closes and removes sessions unused since before cutoff. Sessions with a submission in flight are kept.
func (s *Sessions) Evict(cutoff time.Time) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	evicted := 0
	for id, session := range s.chats {
		if session.lastUsed.After(cutoff) || session.busy() {
			continue
		}
		session.Close()
		delete(s.chats, id)
		evicted++
	}

	return evicted
}

// Sweep evicts idle sessions every interval until ctx is done. Remaining sessions are left open, callers
// close them once no command can still use them.
func (s *Sessions) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		log.Debug().Dur("interval", interval).Msg("running session sweep timer")
		select {
		case <-ticker.C:
			if n := s.Evict(time.Now().Add(-s.ttl)); n > 0 {
				log.Info().Int("evicted", n).Msg("evicted idle sessions")
			}
		case <-ctx.Done():
			log.Debug().Msg("stopping session sweep")
			return
		}
	}
}

func (s *Sessions) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for id, session := range s.chats {
		session.Close()
		delete(s.chats, id)
	}
}

// Phases reports the current phase of both workflows of a chat, for diagnostics.
func (s *Sessions) Phases(chatID int64) (resize, convert domain.Phase, ok bool) {
	s.mutex.Lock()
	session, ok := s.chats[chatID]
	s.mutex.Unlock()

	if !ok {
		return domain.Idle, domain.Idle, false
	}

	return session.Resize.Phase(), session.Convert.Phase(), true
}
