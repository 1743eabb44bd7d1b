package contracts

import (
	"context"
	"errors"
	"sync"

	"github.com/NeurArk/ai-contract-guardian/client"
	"github.com/NeurArk/ai-contract-guardian/model"
)

// defaultPageSize matches the backend's default list page.
const defaultPageSize = 100

// API is the slice of the HTTP client the data layer needs.
type API interface {
	ListContracts(ctx context.Context, skip, limit int) ([]model.Contract, error)
	GetContract(ctx context.Context, id string) (*model.Contract, error)
	GetContractStatus(ctx context.Context, id string) (*model.AnalysisStatus, error)
	GetContractAnalysis(ctx context.Context, id string) (*model.Analysis, error)
}

// Service provides read access to contract and analysis data. It keeps a
// read-only cache keyed by contract ID; concurrent fetches may race, so
// the cache applies last-write-wins by response arrival.
type Service struct {
	api API

	mu    sync.Mutex
	cache map[string]model.Contract
}

// NewService creates a data layer on top of the given API client.
func NewService(api API) *Service {
	return &Service{
		api:   api,
		cache: make(map[string]model.Contract),
	}
}

// List returns all contracts owned by the session. An empty slice is a
// valid result, not an error.
func (s *Service) List(ctx context.Context) ([]model.Contract, error) {
	contracts, err := s.api.ListContracts(ctx, 0, defaultPageSize)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for _, c := range contracts {
		s.cache[c.ID] = c
	}
	s.mu.Unlock()

	return contracts, nil
}

// Get fetches one contract. A missing contract is reported via
// client.ErrNotFound and evicted from the cache.
func (s *Service) Get(ctx context.Context, id string) (*model.Contract, error) {
	contract, err := s.api.GetContract(ctx, id)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			s.mu.Lock()
			delete(s.cache, id)
			s.mu.Unlock()
		}
		return nil, err
	}

	s.mu.Lock()
	s.cache[contract.ID] = *contract
	s.mu.Unlock()

	return contract, nil
}

// Cached returns the last cached copy of a contract, if any.
func (s *Service) Cached(id string) (model.Contract, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cache[id]
	return c, ok
}

// Status fetches the current analysis status for a contract. The cached
// contract's status field is refreshed as a side effect.
func (s *Service) Status(ctx context.Context, id string) (*model.AnalysisStatus, error) {
	status, err := s.api.GetContractStatus(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if c, ok := s.cache[id]; ok {
		c.Status = status.Status
		c.UpdatedAt = status.UpdatedAt
		s.cache[id] = c
	}
	s.mu.Unlock()

	return status, nil
}

// Analysis fetches the full analysis for a contract. Partial or absent
// results are tolerated; consumers render missing fields as
// "not identified".
func (s *Service) Analysis(ctx context.Context, id string) (*model.Analysis, error) {
	return s.api.GetContractAnalysis(ctx, id)
}
