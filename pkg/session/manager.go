package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/gemini-wallpaper-studio/pkg/domain"
)

// Stats はセッション管理の集計値です。
type Stats struct {
	TotalSessions  int       `json:"totalSessions"`
	ActiveSessions int       `json:"activeSessions"`
	Generating     int       `json:"generating"`
	Evicted        int       `json:"evicted"`
	StartTime      time.Time `json:"startTime"`
}

// Manager はセッションの生成・検索・削除と期限切れの掃除を担当します。
type Manager struct {
	client Generator

	mu       sync.RWMutex
	sessions map[string]*Session
	total    int
	evicted  int
	started  time.Time
}

// NewManager は Manager を生成します。
func NewManager(client Generator) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("client (Generator) is required")
	}
	return &Manager{
		client:   client,
		sessions: make(map[string]*Session),
		started:  time.Now(),
	}, nil
}

// Create は新しいセッションを登録して返します。
func (m *Manager) Create() (*Session, error) {
	s, err := New(uuid.NewString(), m.client)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.total++
	active := len(m.sessions)
	m.mu.Unlock()

	slog.Info("セッションを作成しました", "session", s.ID(), "active", active)
	return s, nil
}

// Get は ID に対応するセッションを返します。
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove はセッションを閉じて削除します。存在しなければ false を返します。
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.Close()
	slog.Info("セッションを削除しました", "session", id)
	return true
}

// Cleanup は ttl 以上操作のないセッションを削除し、削除数を返します。
// 生成中のセッションも対象で、進行中の呼び出しはキャンセルされます。
func (m *Manager) Cleanup(ttl time.Duration) int {
	now := time.Now()
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if now.Sub(s.LastActivity()) > ttl {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.evicted += len(expired)
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		slog.Info("期限切れのセッションを削除しました", "count", len(expired), "ttl", ttl)
	}
	return len(expired)
}

// StartCleanup は interval ごとに Cleanup を実行します。ctx が終了すると止まります。
func (m *Manager) StartCleanup(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 || ttl <= 0 {
		slog.WarnContext(ctx, "セッション掃除は無効です", "interval", interval, "ttl", ttl)
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Cleanup(ttl)
			}
		}
	}()
	slog.InfoContext(ctx, "セッション掃除を開始しました", "interval", interval, "ttl", ttl)
}

// CloseAll はすべてのセッションを閉じます。シャットダウン時に使います。
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Stats は現在の集計値を返します。
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := Stats{
		TotalSessions:  m.total,
		ActiveSessions: len(m.sessions),
		Evicted:        m.evicted,
		StartTime:      m.started,
	}
	for _, s := range m.sessions {
		if s.Snapshot().State == domain.StateGenerating {
			st.Generating++
		}
	}
	return st
}
