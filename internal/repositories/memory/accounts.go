package memory

import (
	"context"
	"fmt"
	"strings"
)

// AddAccount registers an account. Group accounts cannot carry postings.
func (s *Store) AddAccount(accountID string, leaf bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.accounts[accountID] = account{leaf: leaf}
}

// SeedAccounts registers accounts from a comma separated list. An entry with the
// suffix ":group" is a group account, e.g. "1000:group,1100,1200".
func (s *Store) SeedAccounts(list string) error {
	for _, raw := range strings.Split(list, ",") {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		id, kind, _ := strings.Cut(entry, ":")
		switch kind {
		case "", "leaf":
			s.AddAccount(id, true)
		case "group":
			s.AddAccount(id, false)
		default:
			return fmt.Errorf("invalid account entry %q", entry)
		}
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, accountID string) (bool, error) {
	var ok bool
	err := s.view(ctx, func(d *state) error {
		_, ok = d.accounts[accountID]
		return nil
	})
	return ok, err
}

func (s *Store) IsLeafAccount(ctx context.Context, accountID string) (bool, error) {
	var leaf bool
	err := s.view(ctx, func(d *state) error {
		leaf = d.accounts[accountID].leaf
		return nil
	})
	return leaf, err
}
