package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/NeurArk/ai-contract-guardian/model"
)

// ProgressFunc receives upload progress as a percentage. Values are
// monotonically non-decreasing within one upload.
type ProgressFunc func(percent int)

// ListContracts returns the contracts owned by the current session. An
// empty list is a valid, non-error result.
func (c *Client) ListContracts(ctx context.Context, skip, limit int) ([]model.Contract, error) {
	query := url.Values{}
	query.Set("skip", fmt.Sprintf("%d", skip))
	query.Set("limit", fmt.Sprintf("%d", limit))

	var contracts []model.Contract
	if err := c.doJSON(ctx, http.MethodGet, "/contracts?"+query.Encode(), nil, &contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}

// GetContract fetches one contract. A missing contract yields an error
// matching ErrNotFound.
func (c *Client) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	var contract model.Contract
	if err := c.doJSON(ctx, http.MethodGet, "/contracts/"+id, nil, &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

// GetContractStatus fetches the analysis status for a contract. This is
// the polling primitive: callers re-invoke it on an interval while the
// status is non-terminal.
func (c *Client) GetContractStatus(ctx context.Context, id string) (*model.AnalysisStatus, error) {
	var status model.AnalysisStatus
	if err := c.doJSON(ctx, http.MethodGet, "/contracts/"+id+"/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetContractAnalysis fetches the full analysis. Only meaningful once
// the status is completed; partial results decode without error.
func (c *Client) GetContractAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	var analysis model.Analysis
	if err := c.doJSON(ctx, http.MethodGet, "/contracts/"+id+"/analysis", nil, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// UploadContract uploads a document as a multipart form with field
// "file" and returns the created contract. The body is streamed, so the
// request is sent exactly once: an in-flight upload cannot be retried,
// only allowed to fail or complete.
func (c *Client) UploadContract(ctx context.Context, path string, onProgress ProgressFunc) (*model.Contract, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	var src io.Reader = file
	if onProgress != nil && info.Size() > 0 {
		src = &progressReader{reader: file, total: info.Size(), report: onProgress}
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(form.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix+"/contracts/upload", pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.prepare(req)

	var contract model.Contract
	if err := c.handle(req, &contract); err != nil {
		return nil, unwrapPermanent(err)
	}
	return &contract, nil
}

// progressReader reports read progress as a percentage of the total
// size. Reported values never decrease and never exceed 100.
type progressReader struct {
	reader io.Reader
	total  int64
	read   int64
	last   int
	report ProgressFunc
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.read += int64(n)
		percent := int(r.read * 100 / r.total)
		if percent > 100 {
			percent = 100
		}
		if percent > r.last {
			r.last = percent
			r.report(percent)
		}
	}
	return n, err
}
