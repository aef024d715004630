// Package store provides in-memory implementations of the campaign
// persistence interfaces, for tests and development.
package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/quitus/campaign-ledger/campaign"
	"github.com/quitus/campaign-ledger/compliance"
)

// =============================================================================
// MEMORY STORE - CampaignStore + OperationStore
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	campaigns  map[campaign.CampaignID]campaign.Campaign
	operations map[campaign.OperationID]campaign.Operation

	// FailSaveFor makes SaveOperation fail for a given operation id; used
	// by tests to exercise the pair compensation path.
	FailSaveFor map[campaign.OperationID]error

	// FailDeleteFor makes DeleteOperation fail likewise.
	FailDeleteFor map[campaign.OperationID]error
}

func NewMemory() *Memory {
	return &Memory{
		campaigns:     make(map[campaign.CampaignID]campaign.Campaign),
		operations:    make(map[campaign.OperationID]campaign.Operation),
		FailSaveFor:   make(map[campaign.OperationID]error),
		FailDeleteFor: make(map[campaign.OperationID]error),
	}
}

func (m *Memory) SaveCampaign(_ context.Context, c campaign.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.campaigns[c.ID] = c
	return nil
}

func (m *Memory) GetCampaign(_ context.Context, id campaign.CampaignID) (*campaign.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, campaign.ErrCampaignNotFound
	}
	return &c, nil
}

func (m *Memory) ListCampaigns(_ context.Context) ([]campaign.Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]campaign.Campaign, 0, len(m.campaigns))
	for _, c := range m.campaigns {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveOperation(_ context.Context, op campaign.Operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailSaveFor[op.ID]; ok {
		return err
	}
	m.operations[op.ID] = op
	return nil
}

func (m *Memory) GetOperation(_ context.Context, id campaign.OperationID) (*campaign.Operation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	op, ok := m.operations[id]
	if !ok {
		return nil, campaign.ErrOperationNotFound
	}
	return &op, nil
}

func (m *Memory) ListOperations(_ context.Context, campaignID campaign.CampaignID, filter campaign.OperationFilter) ([]campaign.Operation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []campaign.Operation
	for _, op := range m.operations {
		if op.CampaignID == campaignID && filter.Matches(op) {
			out = append(out, op)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) DeleteOperation(_ context.Context, id campaign.OperationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailDeleteFor[id]; ok {
		return err
	}
	if _, ok := m.operations[id]; !ok {
		return campaign.ErrOperationNotFound
	}
	delete(m.operations, id)
	return nil
}

func (m *Memory) UpdateStatus(_ context.Context, id campaign.OperationID, status compliance.ValidationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	op, ok := m.operations[id]
	if !ok {
		return campaign.ErrOperationNotFound
	}
	op.Status = status
	m.operations[id] = op
	return nil
}

// Count returns the number of stored operations (test helper).
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.operations)
}

// =============================================================================
// MEMORY BLOBS - BlobStore
// =============================================================================

type MemoryBlobs struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	seq   int
}

func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{blobs: make(map[string][]byte)}
}

func (b *MemoryBlobs) Put(_ context.Context, name string, r io.Reader) (compliance.Attachment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return compliance.Attachment{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	path := fmt.Sprintf("justificatifs/%d-%s", b.seq, name)
	b.blobs[path] = data
	return compliance.Attachment{Path: path, FileName: name}, nil
}

func (b *MemoryBlobs) Open(_ context.Context, path string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.blobs[path]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
