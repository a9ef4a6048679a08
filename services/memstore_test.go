package services

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baniakuntest4-alt/arhanud/models"
)

// memStore is an in-memory RequestStore with the same compare-and-swap
// contract as the Postgres implementation.
type memStore struct {
	mu       sync.Mutex
	requests map[string]models.Request
}

func newMemStore() *memStore {
	return &memStore{requests: map[string]models.Request{}}
}

func (m *memStore) Create(r *models.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.requests[r.ID] = *r
	return nil
}

func (m *memStore) FindByID(id string) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memStore) List(f RequestFilter) ([]models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Request
	for _, r := range m.requests {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.NRP != "" && r.NRP != f.NRP {
			continue
		}
		if f.SubmittedBy != "" && r.SubmittedBy != f.SubmittedBy {
			continue
		}
		if f.Search != "" && !strings.Contains(string(r.Payload), f.Search) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 {
		start := 0
		if f.Page > 1 {
			start = (f.Page - 1) * f.Limit
		}
		if start > len(out) {
			start = len(out)
		}
		end := start + f.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func (m *memStore) TransitionFromPending(id string, to models.RequestStatus, note, verifierID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok || r.Status != models.StatusPending {
		return false, nil
	}
	r.Status = to
	r.VerifierNote = note
	r.VerifiedBy = verifierID
	r.VerifiedAt = &at
	m.requests[id] = r
	return true, nil
}

// memDirectory is an in-memory PersonnelDirectory that records which requests
// were propagated and can be told to fail.
type memDirectory struct {
	mu        sync.Mutex
	personnel map[string]models.Personnel // by NRP
	applied   []string                    // request ids, in order
	failWith  error
}

func newMemDirectory(nrps ...string) *memDirectory {
	d := &memDirectory{personnel: map[string]models.Personnel{}}
	for _, nrp := range nrps {
		d.personnel[nrp] = models.Personnel{Id: uuid.NewString(), NRP: nrp, Status: models.PersonnelActive}
	}
	return d
}

func (d *memDirectory) FindByNRP(nrp string) (*models.Personnel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.personnel[nrp]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (d *memDirectory) ApplyApproved(req *models.Request) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWith != nil {
		return d.failWith
	}
	d.applied = append(d.applied, req.ID)
	return nil
}

// memAudit captures audit entries.
type memAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (a *memAudit) Record(entry models.AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

var errStorageDown = errors.New("storage down")
