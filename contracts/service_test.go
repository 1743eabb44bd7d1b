package contracts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NeurArk/ai-contract-guardian/client"
	"github.com/NeurArk/ai-contract-guardian/model"
)

type fakeAPI struct {
	contracts []model.Contract
	listErr   error
	getErr    error
	status    *model.AnalysisStatus
	statusErr error
	analysis  *model.Analysis
}

func (f *fakeAPI) ListContracts(ctx context.Context, skip, limit int) ([]model.Contract, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.contracts, nil
}

func (f *fakeAPI) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, c := range f.contracts {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, &client.APIError{Status: 404, Detail: "Contract not found"}
}

func (f *fakeAPI) GetContractStatus(ctx context.Context, id string) (*model.AnalysisStatus, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.status, nil
}

func (f *fakeAPI) GetContractAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	return f.analysis, nil
}

func TestListFillsCache(t *testing.T) {
	api := &fakeAPI{contracts: []model.Contract{
		{ID: "c1", Filename: "nda.pdf", Status: model.StatusCompleted},
		{ID: "c2", Filename: "lease.docx", Status: model.StatusPending},
	}}
	svc := NewService(api)

	contracts, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(contracts) != 2 {
		t.Fatalf("Expected 2 contracts, got %d", len(contracts))
	}

	cached, ok := svc.Cached("c2")
	if !ok {
		t.Fatal("Expected c2 in cache")
	}
	if cached.Filename != "lease.docx" {
		t.Errorf("Expected lease.docx, got %s", cached.Filename)
	}
}

func TestGetRefreshesCache(t *testing.T) {
	api := &fakeAPI{contracts: []model.Contract{
		{ID: "c1", Filename: "nda.pdf", Status: model.StatusPending},
	}}
	svc := NewService(api)
	svc.List(context.Background())

	api.contracts[0].Status = model.StatusCompleted
	contract, err := svc.Get(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if contract.Status != model.StatusCompleted {
		t.Errorf("Expected completed, got %s", contract.Status)
	}

	cached, _ := svc.Cached("c1")
	if cached.Status != model.StatusCompleted {
		t.Errorf("Expected cache refresh, got %s", cached.Status)
	}
}

func TestGetNotFoundEvictsCache(t *testing.T) {
	api := &fakeAPI{contracts: []model.Contract{
		{ID: "c1", Filename: "nda.pdf", Status: model.StatusCompleted},
	}}
	svc := NewService(api)
	svc.List(context.Background())

	api.getErr = &client.APIError{Status: 404, Detail: "Contract not found"}
	_, err := svc.Get(context.Background(), "c1")
	if !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	if _, ok := svc.Cached("c1"); ok {
		t.Error("Expected c1 evicted from cache")
	}
}

func TestStatusRefreshesCachedContract(t *testing.T) {
	updated := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		contracts: []model.Contract{{ID: "c1", Filename: "nda.pdf", Status: model.StatusPending}},
		status: &model.AnalysisStatus{
			ContractID: "c1",
			Status:     model.StatusProcessing,
			UpdatedAt:  updated,
		},
	}
	svc := NewService(api)
	svc.List(context.Background())

	status, err := svc.Status(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if status.Status != model.StatusProcessing {
		t.Errorf("Expected processing, got %s", status.Status)
	}

	cached, _ := svc.Cached("c1")
	if cached.Status != model.StatusProcessing {
		t.Errorf("Expected cached status refreshed, got %s", cached.Status)
	}
	if !cached.UpdatedAt.Equal(updated) {
		t.Errorf("Expected cached timestamp refreshed, got %v", cached.UpdatedAt)
	}
}

func TestStatusErrorLeavesCacheAlone(t *testing.T) {
	api := &fakeAPI{
		contracts: []model.Contract{{ID: "c1", Filename: "nda.pdf", Status: model.StatusPending}},
		statusErr: errors.New("timeout"),
	}
	svc := NewService(api)
	svc.List(context.Background())

	if _, err := svc.Status(context.Background(), "c1"); err == nil {
		t.Fatal("Expected error")
	}

	cached, _ := svc.Cached("c1")
	if cached.Status != model.StatusPending {
		t.Errorf("Expected cache untouched, got %s", cached.Status)
	}
}
