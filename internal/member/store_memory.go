package member

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"bmmhub/pkg/domain"
	"bmmhub/pkg/platform/sentinel"
)

// InMemoryStore keeps participation records in process memory. It backs unit
// tests and single-node development; PostgreSQL is the production store.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[uuid.UUID]*Record)}
}

func (s *InMemoryStore) Create(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.records {
		if existing.EventID == record.EventID && existing.MembershipNumber == record.MembershipNumber {
			return fmt.Errorf("record for member %s in event %s: %w",
				record.MembershipNumber, record.EventID, sentinel.ErrDuplicate)
		}
	}
	s.records[record.ID] = record.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, sentinel.ErrNotFound)
	}
	return record.Clone(), nil
}

func (s *InMemoryStore) FindByAccessToken(_ context.Context, token string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.AccessToken == token {
			return record.Clone(), nil
		}
	}
	return nil, fmt.Errorf("access token: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByEventAndMembership(_ context.Context, eventID, membershipNumber string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.EventID == eventID && record.MembershipNumber == membershipNumber {
			return record.Clone(), nil
		}
	}
	return nil, fmt.Errorf("member %s in event %s: %w", membershipNumber, eventID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByTicketToken(_ context.Context, token uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if record.Ticket.Token != nil && *record.Ticket.Token == token {
			return record.Clone(), nil
		}
	}
	return nil, fmt.Errorf("ticket token: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) Update(ctx context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.records[record.ID]
	if !ok {
		return fmt.Errorf("record %s: %w", record.ID, sentinel.ErrNotFound)
	}
	if stored.Version != record.Version {
		return fmt.Errorf("record %s version %d (stored %d): %w",
			record.ID, record.Version, stored.Version, sentinel.ErrConflict)
	}
	record.Version++
	s.records[record.ID] = record.Clone()
	return nil
}

func (s *InMemoryStore) ListByStage(_ context.Context, eventID string, stage domain.Stage, region *domain.Region) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Record
	for _, record := range s.records {
		if record.EventID != eventID || record.Stage != stage {
			continue
		}
		if region != nil && record.Region != *region {
			continue
		}
		out = append(out, record.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].MembershipNumber < out[j].MembershipNumber
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) StageCounts(_ context.Context, eventID string) ([]StageCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.Stage]map[domain.Region]int)
	for _, record := range s.records {
		if record.EventID != eventID {
			continue
		}
		if counts[record.Stage] == nil {
			counts[record.Stage] = make(map[domain.Region]int)
		}
		counts[record.Stage][record.Region]++
	}
	var out []StageCount
	for stage, regions := range counts {
		for region, n := range regions {
			out = append(out, StageCount{Stage: stage, Region: region, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stage != out[j].Stage {
			return out[i].Stage < out[j].Stage
		}
		return out[i].Region < out[j].Region
	})
	return out, nil
}
