package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NeurArk/ai-contract-guardian/middleware"
	"github.com/NeurArk/ai-contract-guardian/model"
	"github.com/NeurArk/ai-contract-guardian/pkg/logger"
)

type exportMetadata struct {
	ExportedAt     time.Time `json:"exported_at"`
	ContractsCount int       `json:"contracts_count"`
	AnalysesCount  int       `json:"analyses_count"`
	Version        string    `json:"version"`
}

type userDataExport struct {
	User      *model.User      `json:"user"`
	Contracts []model.Contract `json:"contracts"`
	Analyses  []model.Analysis `json:"analyses"`
	Metadata  exportMetadata   `json:"export_metadata"`
}

// exportUserData returns the full data export for the authenticated
// user: profile, contracts, analyses and export metadata.
func (s *Server) exportUserData(c *gin.Context) {
	userID := middleware.GetUserID(c)

	user := s.store.User(userID)
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}

	contracts := s.store.ContractsByUser(userID)
	analyses := make([]model.Analysis, 0, len(contracts))
	for _, contract := range contracts {
		if analysis := s.store.AnalysisByContract(contract.ID); analysis != nil {
			analyses = append(analyses, *analysis)
		}
	}

	c.JSON(http.StatusOK, userDataExport{
		User:      user,
		Contracts: contracts,
		Analyses:  analyses,
		Metadata: exportMetadata{
			ExportedAt:     time.Now().UTC(),
			ContractsCount: len(contracts),
			AnalysesCount:  len(analyses),
			Version:        "1.0.0",
		},
	})
}

// deleteAccount permanently removes the user and everything attached to
// them. There is no undo.
func (s *Server) deleteAccount(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if s.store.User(userID) == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}

	objectNames, contractCount, analysisCount := s.store.DeleteUserData(userID)

	deletedFiles := 0
	failedFiles := 0
	for _, objectName := range objectNames {
		if err := s.objects.Delete(context.Background(), objectName); err != nil {
			failedFiles++
			continue
		}
		deletedFiles++
	}

	logger.Info(c.Request.Context(), "account deleted",
		"user_id", userID,
		"contracts", contractCount,
		"analyses", analysisCount,
	)

	c.JSON(http.StatusOK, gin.H{
		"message":           "Account deleted",
		"deleted_contracts": contractCount,
		"deleted_analyses":  analysisCount,
		"deleted_files":     deletedFiles,
		"failed_files":      failedFiles,
	})
}
