package tenant_test

import (
	"context"
	"sync"
)

type mockIdentities struct {
	ids map[any]int64
	err error
}

func (m *mockIdentities) Resolve(_ context.Context, raw any) (int64, bool, error) {
	if m.err != nil {
		return 0, false, m.err
	}
	id, ok := m.ids[raw]
	return id, ok, nil
}

type mockOrganizations struct {
	mu    sync.Mutex
	orgs  map[int64]string
	err   error
	calls int
}

func (m *mockOrganizations) ActiveOrganization(_ context.Context, userID int64) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", false, m.err
	}
	org, ok := m.orgs[userID]
	return org, ok, nil
}

func (m *mockOrganizations) set(userID int64, org string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orgs[userID] = org
}

func (m *mockOrganizations) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
