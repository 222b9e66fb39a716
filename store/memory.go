package store

import (
	"context"
	"sync"

	"github.com/rushteam/persokit/core"
)

// MemoryStore 是内存实现的画像/目录存储，用于测试/开发/原型。
// 读写并发安全；ListProfiles/ListProducts 按写入顺序返回，结果可复现。
type MemoryStore struct {
	mu         sync.RWMutex
	profiles   map[string]*core.UserProfile
	profileIDs []string
	products   map[string]*core.Product
	productIDs []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*core.UserProfile),
		products: make(map[string]*core.Product),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

// PutProfile 写入/覆盖一条画像。
func (m *MemoryStore) PutProfile(p *core.UserProfile) {
	if p == nil || p.UserID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.UserID]; !ok {
		m.profileIDs = append(m.profileIDs, p.UserID)
	}
	cp := *p
	m.profiles[p.UserID] = &cp
}

// PutProduct 写入/覆盖一条商品。
func (m *MemoryStore) PutProduct(p core.Product) {
	if p.ID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		m.productIDs = append(m.productIDs, p.ID)
	}
	m.products[p.ID] = &p
}

func (m *MemoryStore) GetProfile(_ context.Context, userID string) (*core.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound,
			"profile not found: "+userID)
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) ListProfiles(_ context.Context) ([]*core.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*core.UserProfile, 0, len(m.profileIDs))
	for _, id := range m.profileIDs {
		cp := *m.profiles[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryStore) GetProduct(_ context.Context, productID string) (*core.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[productID]
	if !ok {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound,
			"product not found: "+productID)
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) ListProducts(_ context.Context) ([]core.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.Product, 0, len(m.productIDs))
	for _, id := range m.productIDs {
		out = append(out, *m.products[id])
	}
	return out, nil
}
