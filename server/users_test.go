package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/NeurArk/ai-contract-guardian/model"
)

func TestExportUserData(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "a@b.com", "TestPassword123!")
	uploadFile(t, s, token, "nda.pdf", pdfType, []byte("%PDF-1.4"))

	w := doJSON(s, "GET", "/api/v1/users/me/export", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var export struct {
		User      *model.User      `json:"user"`
		Contracts []model.Contract `json:"contracts"`
		Analyses  []model.Analysis `json:"analyses"`
		Metadata  struct {
			ContractsCount int    `json:"contracts_count"`
			AnalysesCount  int    `json:"analyses_count"`
			Version        string `json:"version"`
		} `json:"export_metadata"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &export); err != nil {
		t.Fatalf("Failed to decode export: %v", err)
	}

	if export.User == nil || export.User.Email != "a@b.com" {
		t.Errorf("Expected user in export, got %+v", export.User)
	}
	if len(export.Contracts) != 1 {
		t.Errorf("Expected 1 contract, got %d", len(export.Contracts))
	}
	if len(export.Analyses) != 1 {
		t.Errorf("Expected 1 analysis, got %d", len(export.Analyses))
	}
	if export.Metadata.ContractsCount != 1 || export.Metadata.AnalysesCount != 1 {
		t.Errorf("Unexpected counts: %+v", export.Metadata)
	}
	if export.Metadata.Version != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %s", export.Metadata.Version)
	}
}

func TestDeleteAccount(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "a@b.com", "TestPassword123!")
	uploadFile(t, s, token, "nda.pdf", pdfType, []byte("%PDF-1.4"))
	uploadFile(t, s, token, "lease.pdf", pdfType, []byte("%PDF-1.4"))

	w := doJSON(s, "DELETE", "/api/v1/users/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["message"] != "Account deleted" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
	if body["deleted_contracts"] != float64(2) {
		t.Errorf("Expected 2 deleted contracts, got %v", body["deleted_contracts"])
	}
	if body["deleted_analyses"] != float64(2) {
		t.Errorf("Expected 2 deleted analyses, got %v", body["deleted_analyses"])
	}
	if body["deleted_files"] != float64(2) {
		t.Errorf("Expected 2 deleted files, got %v", body["deleted_files"])
	}
	if body["failed_files"] != float64(0) {
		t.Errorf("Expected 0 failed files, got %v", body["failed_files"])
	}

	// The email is free again.
	w = doJSON(s, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    "a@b.com",
		"password": "TestPassword123!",
	})
	if w.Code != http.StatusCreated {
		t.Errorf("Expected email to be reusable after deletion, got %d", w.Code)
	}
}

func TestDeleteAccountTwice(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "a@b.com", "TestPassword123!")

	if w := doJSON(s, "DELETE", "/api/v1/users/me", token, nil); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	// The token now identifies a deleted user.
	w := doJSON(s, "DELETE", "/api/v1/users/me", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestExportRequiresAuth(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(s, "GET", "/api/v1/users/me/export", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}
