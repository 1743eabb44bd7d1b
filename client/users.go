package client

import (
	"context"
	"encoding/json"
	"net/http"
)

// DeleteAccountResponse summarizes what the backend removed along with
// the account.
type DeleteAccountResponse struct {
	Message          string `json:"message"`
	DeletedContracts int    `json:"deleted_contracts"`
	DeletedAnalyses  int    `json:"deleted_analyses"`
	DeletedFiles     int    `json:"deleted_files"`
	FailedFiles      int    `json:"failed_files"`
}

// ExportData downloads the full data export for the session's user. The
// payload is returned as raw JSON so it can be written to disk verbatim.
func (c *Client) ExportData(ctx context.Context) (json.RawMessage, error) {
	var data json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/users/me/export", nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteAccount permanently deletes the account and all associated
// data. There is no backend-side undo; callers must clear the local
// session afterwards.
func (c *Client) DeleteAccount(ctx context.Context) (*DeleteAccountResponse, error) {
	var resp DeleteAccountResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/users/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
