package server

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/NeurArk/ai-contract-guardian/middleware"
	"github.com/NeurArk/ai-contract-guardian/model"
	"github.com/NeurArk/ai-contract-guardian/pkg/logger"
)

// uploadContract accepts a multipart upload with field "file",
// validates it the way the hosted backend does, stores the document and
// schedules the simulated analysis.
func (s *Server) uploadContract(c *gin.Context) {
	userID := middleware.GetUserID(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No file provided"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" && ext != ".docx" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Unsupported file extension. Accepted: .pdf, .docx"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if ext == ".pdf" {
			contentType = "application/pdf"
		} else {
			contentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		}
	}

	allowed := false
	for _, t := range s.uploadCfg.AllowedTypes {
		if t == contentType {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Unsupported file type: %s", contentType)})
		return
	}

	if header.Size > s.uploadCfg.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": fmt.Sprintf("File too large. Maximum size: %dMB", s.uploadCfg.MaxFileSize/(1024*1024)),
		})
		return
	}

	content := make([]byte, 0, header.Size)
	buf := bytes.NewBuffer(content)
	if _, err := buf.ReadFrom(file); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Failed to read file"})
		return
	}
	if int64(buf.Len()) > s.uploadCfg.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": fmt.Sprintf("File too large. Maximum size: %dMB", s.uploadCfg.MaxFileSize/(1024*1024)),
		})
		return
	}

	contractID := uuid.New().String()
	objectName := fmt.Sprintf("%s/%s%s", userID, contractID, ext)

	if err := s.objects.Put(c.Request.Context(), objectName, bytes.NewReader(buf.Bytes()), int64(buf.Len()), contentType); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to store file"})
		return
	}

	now := time.Now().UTC()
	contract := model.Contract{
		ID:        contractID,
		Filename:  header.Filename,
		FileSize:  int64(buf.Len()),
		FileType:  contentType,
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.store.SaveContract(userID, objectName, contract)
	s.store.CreateAnalysis(contractID)

	logger.Info(c.Request.Context(), "contract uploaded",
		"contract_id", contractID,
		"filename", header.Filename,
		"size", buf.Len(),
	)

	go s.runAnalysis(contractID, header.Filename)

	c.JSON(http.StatusCreated, contract)
}

// listContracts returns the user's contracts, newest first. An empty
// list is a valid response.
func (s *Server) listContracts(c *gin.Context) {
	contracts := s.store.ContractsByUser(middleware.GetUserID(c))
	c.JSON(http.StatusOK, contracts)
}

func (s *Server) getContract(c *gin.Context) {
	contract := s.store.Contract(middleware.GetUserID(c), c.Param("id"))
	if contract == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Contract not found"})
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (s *Server) getContractStatus(c *gin.Context) {
	id := c.Param("id")

	contract := s.store.Contract(middleware.GetUserID(c), id)
	if contract == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Contract not found"})
		return
	}

	analysis := s.store.AnalysisByContract(id)
	if analysis == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Analysis not found"})
		return
	}

	c.JSON(http.StatusOK, model.AnalysisStatus{
		ContractID:   contract.ID,
		AnalysisID:   analysis.ID,
		Status:       analysis.Status,
		ScoreEquity:  analysis.ScoreEquity,
		ScoreClarity: analysis.ScoreClarity,
		ErrorMessage: analysis.ErrorMessage,
		CreatedAt:    analysis.CreatedAt,
		UpdatedAt:    contract.UpdatedAt,
	})
}

func (s *Server) getContractAnalysis(c *gin.Context) {
	id := c.Param("id")

	contract := s.store.Contract(middleware.GetUserID(c), id)
	if contract == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Contract not found"})
		return
	}

	analysis := s.store.AnalysisByContract(id)
	if analysis == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Analysis not found"})
		return
	}

	c.JSON(http.StatusOK, analysis)
}
