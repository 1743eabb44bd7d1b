package server

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NeurArk/ai-contract-guardian/model"
)

// ErrDuplicateEmail is returned when registering an email that already
// has an account.
var ErrDuplicateEmail = errors.New("email already registered")

// userRecord is a stored account. The password hash never leaves the
// store.
type userRecord struct {
	model.User
	PasswordHash string
}

// contractRecord is a stored contract with its ownership and storage
// location.
type contractRecord struct {
	model.Contract
	UserID     string
	ObjectName string
}

// Store holds all mock-server state in memory, one analysis per
// contract.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*userRecord     // by user ID
	emails    map[string]string          // email -> user ID
	contracts map[string]*contractRecord // by contract ID
	analyses  map[string]*model.Analysis // by contract ID
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:     make(map[string]*userRecord),
		emails:    make(map[string]string),
		contracts: make(map[string]*contractRecord),
		analyses:  make(map[string]*model.Analysis),
	}
}

// CreateUser registers a new account.
func (s *Store) CreateUser(email, passwordHash string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[email]; exists {
		return nil, ErrDuplicateEmail
	}

	user := &userRecord{
		User: model.User{
			ID:        uuid.New().String(),
			Email:     email,
			IsActive:  true,
			CreatedAt: time.Now().UTC(),
		},
		PasswordHash: passwordHash,
	}
	s.users[user.ID] = user
	s.emails[email] = user.ID

	u := user.User
	return &u, nil
}

// UserByEmail returns the account for an email along with its password
// hash, or nil when unknown.
func (s *Store) UserByEmail(email string) (*model.User, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, ""
	}
	record := s.users[id]
	u := record.User
	return &u, record.PasswordHash
}

// User returns the account with the given ID, or nil.
func (s *Store) User(id string) *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.users[id]
	if !ok {
		return nil
	}
	u := record.User
	return &u
}

// SaveContract stores a contract owned by userID.
func (s *Store) SaveContract(userID, objectName string, contract model.Contract) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contracts[contract.ID] = &contractRecord{
		Contract:   contract,
		UserID:     userID,
		ObjectName: objectName,
	}
}

// Contract returns a contract when it exists and belongs to userID.
func (s *Store) Contract(userID, id string) *model.Contract {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.contracts[id]
	if !ok || record.UserID != userID {
		return nil
	}
	c := record.Contract
	return &c
}

// ContractsByUser returns the user's contracts, newest first.
func (s *Store) ContractsByUser(userID string) []model.Contract {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Contract, 0)
	for _, record := range s.contracts {
		if record.UserID == userID {
			result = append(result, record.Contract)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// CreateAnalysis attaches a pending analysis to a contract.
func (s *Store) CreateAnalysis(contractID string) *model.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()

	analysis := &model.Analysis{
		ID:         uuid.New().String(),
		ContractID: contractID,
		Status:     model.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	s.analyses[contractID] = analysis

	a := *analysis
	return &a
}

// AnalysisByContract returns the analysis for a contract, or nil.
func (s *Store) AnalysisByContract(contractID string) *model.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()

	analysis, ok := s.analyses[contractID]
	if !ok {
		return nil
	}
	a := *analysis
	return &a
}

// SetAnalysisStatus moves a contract and its analysis to a new status.
// The error message is only kept for failures.
func (s *Store) SetAnalysisStatus(contractID string, status model.Status, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if record, ok := s.contracts[contractID]; ok {
		record.Status = status
		record.UpdatedAt = now
	}
	if analysis, ok := s.analyses[contractID]; ok {
		analysis.Status = status
		analysis.ErrorMessage = errMsg
	}
}

// CompleteAnalysis marks an analysis completed with its results.
func (s *Store) CompleteAnalysis(contractID string, results *model.AnalysisResult, equity, clarity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if record, ok := s.contracts[contractID]; ok {
		record.Status = model.StatusCompleted
		record.UpdatedAt = now
	}
	if analysis, ok := s.analyses[contractID]; ok {
		analysis.Status = model.StatusCompleted
		analysis.Results = results
		analysis.ScoreEquity = &equity
		analysis.ScoreClarity = &clarity
		analysis.ErrorMessage = ""
	}
}

// DeleteUserData removes the user, their contracts and analyses, and
// returns the object names of stored documents plus deletion counts.
func (s *Store) DeleteUserData(userID string) (objectNames []string, contractCount, analysisCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, record := range s.contracts {
		if record.UserID != userID {
			continue
		}
		if record.ObjectName != "" {
			objectNames = append(objectNames, record.ObjectName)
		}
		if _, ok := s.analyses[id]; ok {
			delete(s.analyses, id)
			analysisCount++
		}
		delete(s.contracts, id)
		contractCount++
	}

	if record, ok := s.users[userID]; ok {
		delete(s.emails, record.Email)
		delete(s.users, userID)
	}

	return objectNames, contractCount, analysisCount
}
