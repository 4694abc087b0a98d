// Package memory is an in-process implementation of every repository port.
// It backs the service tests and STORAGE_DRIVER=memory local runs.
//
// Unlike the PostgreSQL driver it serializes transactions behind one mutex;
// a transaction works on the live maps and restores a snapshot taken at begin
// if it fails.
package memory

import (
	"context"
	"sync"

	"github.com/SscSPs/voucher_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_engine/internal/core/ports/repositories"
)

type account struct {
	leaf bool
}

type state struct {
	accounts  map[string]account
	vouchers  map[string]domain.Voucher
	workflows map[string]domain.ApprovalWorkflow
	requests  map[string]domain.ApprovalRequest
	actions   map[string][]domain.ApprovalAction
	sequences map[domain.ScopeKey]int64
	audit     map[string][]domain.AuditEntry
}

func newState() *state {
	return &state{
		accounts:  make(map[string]account),
		vouchers:  make(map[string]domain.Voucher),
		workflows: make(map[string]domain.ApprovalWorkflow),
		requests:  make(map[string]domain.ApprovalRequest),
		actions:   make(map[string][]domain.ApprovalAction),
		sequences: make(map[domain.ScopeKey]int64),
		audit:     make(map[string][]domain.AuditEntry),
	}
}

// clone copies every map. Stored values are already private copies, so
// copying the slices they own is enough.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.vouchers {
		c.vouchers[k] = *v.Clone()
	}
	for k, v := range s.workflows {
		v.Levels = append([]domain.ApprovalLevel(nil), v.Levels...)
		c.workflows[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = *v.Clone()
	}
	for k, v := range s.actions {
		c.actions[k] = append([]domain.ApprovalAction(nil), v...)
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	for k, v := range s.audit {
		c.audit[k] = append([]domain.AuditEntry(nil), v...)
	}
	return c
}

// Store holds all data of the memory driver.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: newState()}
}

// txKey marks a context that already holds this store's lock.
type txKey struct {
	store *Store
}

func (s *Store) inTx(ctx context.Context) bool {
	return ctx.Value(txKey{store: s}) != nil
}

// WithinTx runs fn holding the store lock. Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	err := fn(context.WithValue(ctx, txKey{store: s}, true))
	if err == nil {
		// a cancelled caller must not observe a commit
		err = ctx.Err()
	}
	if err != nil {
		s.data = snapshot
	}
	return err
}

// view runs fn against the data, taking the lock unless ctx is inside a transaction.
func (s *Store) view(ctx context.Context, fn func(d *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.inTx(ctx) {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// Provider returns the store as a repository provider.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:    s,
		Accounts:     s,
		VoucherRepo:  s,
		WorkflowRepo: s,
		ApprovalRepo: s,
		SequenceRepo: s,
		AuditRepo:    s,
	}
}

var (
	_ portsrepo.TransactionManager       = (*Store)(nil)
	_ portsrepo.AccountDirectory         = (*Store)(nil)
	_ portsrepo.VoucherRepositoryFacade  = (*Store)(nil)
	_ portsrepo.WorkflowRepositoryFacade = (*Store)(nil)
	_ portsrepo.ApprovalRepositoryFacade = (*Store)(nil)
	_ portsrepo.SequenceRepository       = (*Store)(nil)
	_ portsrepo.AuditRepository          = (*Store)(nil)
)
