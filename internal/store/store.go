// Package store persists processed receipts. Two implementations exist: an
// in-memory map for OCR-only deployments without a database, and a Postgres
// store backed by the shared connection pool.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/models"
)

// ErrNotFound is returned when a receipt id does not exist.
var ErrNotFound = errors.New("receipt not found")

// Receipt is one processed upload: the original file reference plus the
// structured record the parser produced.
type Receipt struct {
	ID        string                `json:"id"`
	FileName  string                `json:"fileName"`
	FileURL   string                `json:"fileUrl,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
	Record    *models.ReceiptRecord `json:"record"`
}

// Store is the persistence contract used by the API layer.
type Store interface {
	Save(ctx context.Context, r *Receipt) error
	Get(ctx context.Context, id string) (*Receipt, error)
	// List returns receipts newest first. A limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]Receipt, error)
	Delete(ctx context.Context, id string) error
}

// Memory keeps receipts in process memory. Contents are lost on restart.
type Memory struct {
	mu       sync.RWMutex
	receipts map[string]Receipt
}

func NewMemory() *Memory {
	return &Memory{receipts: make(map[string]Receipt)}
}

func (m *Memory) Save(ctx context.Context, r *Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts[r.ID] = *r
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (*Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.receipts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *Memory) List(ctx context.Context, limit int) ([]Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Receipt, 0, len(m.receipts))
	for _, r := range m.receipts {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.receipts[id]; !ok {
		return ErrNotFound
	}
	delete(m.receipts, id)
	return nil
}
