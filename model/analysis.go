package model

import (
	"time"
)

// RiskClause is one flagged clause in an analysis report.
type RiskClause struct {
	Clause      string `json:"clause"`
	Level       string `json:"niveau"`
	Explanation string `json:"explication"`
}

// Party is one contracting party identified by the analysis.
type Party struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// AnalysisResult is the structured risk report produced by the analysis
// engine. The JSON keys are fixed by the backend contract. Any field may
// be absent on older or partial analyses; consumers must render missing
// data as "not identified" rather than fail.
type AnalysisResult struct {
	Parties         []Party      `json:"parties"`
	ContractType    string       `json:"type_contrat"`
	RiskClauses     []RiskClause `json:"clauses_risque"`
	BalanceScore    int          `json:"score_equilibre"`
	ClarityScore    int          `json:"score_clarity"`
	Recommendations []string     `json:"recommandations"`
}

// Analysis is the full analysis record for one contract. Results are
// only populated once Status is completed.
type Analysis struct {
	ID           string          `json:"id"`
	ContractID   string          `json:"contract_id"`
	Status       Status          `json:"status"`
	Results      *AnalysisResult `json:"results,omitempty"`
	ScoreEquity  *int            `json:"score_equity,omitempty"`
	ScoreClarity *int            `json:"score_clarity,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// AnalysisStatus is the lightweight polling payload returned by
// GET /api/v1/contracts/{id}/status.
type AnalysisStatus struct {
	ContractID   string    `json:"contract_id"`
	AnalysisID   string    `json:"analysis_id"`
	Status       Status    `json:"status"`
	ScoreEquity  *int      `json:"score_equity,omitempty"`
	ScoreClarity *int      `json:"score_clarity,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
