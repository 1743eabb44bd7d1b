package server

import (
	"context"
	"strings"
	"time"

	"github.com/NeurArk/ai-contract-guardian/model"
	"github.com/NeurArk/ai-contract-guardian/pkg/logger"
)

// runAnalysis simulates the analysis pipeline: pending -> processing ->
// completed (or failed), paced by the configured delay. Uploading a
// filename containing "unreadable" forces a failure, which the
// end-to-end tests rely on.
func (s *Server) runAnalysis(contractID, filename string) {
	ctx := context.Background()

	time.Sleep(s.cfg.AnalysisDelay)
	s.store.SetAnalysisStatus(contractID, model.StatusProcessing, "")

	time.Sleep(s.cfg.AnalysisDelay)
	if strings.Contains(strings.ToLower(filename), "unreadable") {
		s.store.SetAnalysisStatus(contractID, model.StatusFailed, "Unable to extract text from the document")
		logger.Warn(ctx, "simulated analysis failed", "contract_id", contractID)
		return
	}

	s.store.CompleteAnalysis(contractID, sampleResult(filename), 72, 85)
	logger.Info(ctx, "simulated analysis completed", "contract_id", contractID)
}

// sampleResult is the canned risk report attached to completed
// analyses.
func sampleResult(filename string) *model.AnalysisResult {
	return &model.AnalysisResult{
		Parties: []model.Party{
			{Name: "Acme Services SAS", Role: "prestataire"},
			{Name: "Client final", Role: "client"},
		},
		ContractType: "prestation de services",
		RiskClauses: []model.RiskClause{
			{
				Clause:      "Clause de résiliation unilatérale",
				Level:       "high",
				Explanation: "Le prestataire peut résilier sans préavis, le client non.",
			},
			{
				Clause:      "Limitation de responsabilité",
				Level:       "medium",
				Explanation: "Plafond de responsabilité très inférieur à la valeur du contrat.",
			},
		},
		BalanceScore: 72,
		ClarityScore: 85,
		Recommendations: []string{
			"Négocier un préavis de résiliation réciproque.",
			"Relever le plafond de responsabilité.",
			"Préciser les livrables attendus dans " + filename + ".",
		},
	}
}
