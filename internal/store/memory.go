package store

import (
	"errors"
	"sort"
	"sync"

	"faturas/internal/models"
)

var errNoFingerprint = errors.New("transaction has no fingerprint")

// Memory is an in-memory Store keyed by fingerprint. It honors the same
// insert-if-absent contract as the SQLite store and backs tests and
// ad-hoc comparisons that never touch disk.
type Memory struct {
	mu           sync.Mutex
	transactions map[string]models.Transaction
	order        []string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{transactions: make(map[string]models.Transaction)}
}

// InsertIfAbsent adds the transaction unless its fingerprint is already
// present. The mutex serializes check-and-set, so concurrent imports of
// the same transaction cannot both insert.
func (m *Memory) InsertIfAbsent(t *models.Transaction) (bool, error) {
	if t.Fingerprint == "" {
		return false, errNoFingerprint
	}
	if _, err := t.MonthKey(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.transactions[t.Fingerprint]; exists {
		return false, nil
	}
	m.transactions[t.Fingerprint] = *t
	m.order = append(m.order, t.Fingerprint)
	return true, nil
}

// Query returns transactions matching the filter in insertion order
// grouped by month, mirroring the SQLite ordering.
func (m *Memory) Query(f Filter) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	monthSet := make(map[string]bool, len(f.Months))
	for _, month := range f.Months {
		monthSet[month] = true
	}

	var result []models.Transaction
	for _, fp := range m.order {
		t := m.transactions[fp]
		if len(monthSet) > 0 {
			monthKey, err := t.MonthKey()
			if err != nil || !monthSet[monthKey] {
				continue
			}
		}
		if f.CardOrigin != "" && t.CardOrigin != f.CardOrigin {
			continue
		}
		if f.Issuer != "" && t.Issuer != f.Issuer {
			continue
		}
		result = append(result, t)
	}

	sort.SliceStable(result, func(i, j int) bool {
		mi, _ := result[i].MonthKey()
		mj, _ := result[j].MonthKey()
		return mi < mj
	})

	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	return result, nil
}

// GetByFingerprint returns a stored transaction, or nil when absent.
func (m *Memory) GetByFingerprint(fingerprint string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, exists := m.transactions[fingerprint]
	if !exists {
		return nil, nil
	}
	return &t, nil
}

// UpdateCategory replaces the category of the stored transaction.
func (m *Memory) UpdateCategory(fingerprint, category string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, exists := m.transactions[fingerprint]
	if !exists {
		return false, nil
	}
	t.Category = category
	m.transactions[fingerprint] = t
	return true, nil
}

// Remove deletes the transaction with the given fingerprint.
func (m *Memory) Remove(fingerprint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.transactions[fingerprint]; !exists {
		return false, nil
	}
	delete(m.transactions, fingerprint)
	for i, fp := range m.order {
		if fp == fingerprint {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// RemoveAll purges all transactions and returns the count.
func (m *Memory) RemoveAll() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := int64(len(m.transactions))
	m.transactions = make(map[string]models.Transaction)
	m.order = nil
	return count, nil
}
