package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/NeurArk/ai-contract-guardian/client"
	"github.com/NeurArk/ai-contract-guardian/config"
	"github.com/NeurArk/ai-contract-guardian/model"
)

// Phase is the position of the controller in the upload lifecycle.
type Phase int

const (
	// Idle means no file is selected.
	Idle Phase = iota
	// Selected means a file passed local validation and can be uploaded.
	Selected
	// Uploading means a transfer is in flight. At most one upload runs
	// at a time.
	Uploading
	// Done means the last upload succeeded.
	Done
	// Failed means the last upload failed.
	Failed
)

func (p Phase) String() string {
	switch p {
	case Selected:
		return "selected"
	case Uploading:
		return "uploading"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

var (
	// ErrNoFile is returned when Start is called without a validated
	// selection.
	ErrNoFile = errors.New("no file selected")
	// ErrUploadInFlight is returned when a second upload is attempted
	// while one is running.
	ErrUploadInFlight = errors.New("an upload is already in progress")
)

// ValidationError is a local rejection of a file, raised before any
// network call. Choosing a different file recovers from it.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Uploader is the slice of the API client the controller needs.
type Uploader interface {
	UploadContract(ctx context.Context, path string, onProgress client.ProgressFunc) (*model.Contract, error)
}

// State is a snapshot of the controller, safe to render from. Progress
// only reaches 100 on success; after a failure it is back at 0 with
// ErrorMessage set.
type State struct {
	Phase        Phase
	Path         string
	Progress     int
	IsUploading  bool
	ErrorMessage string
	ContractID   string
}

// Controller drives a single-flight contract upload: local validation
// of the selected file, one transfer with progress reporting, and
// mapping of failures to user messages.
type Controller struct {
	api          Uploader
	maxFileSize  int64
	allowedTypes map[string]bool

	mu         sync.Mutex
	state      State
	generation int
}

// NewController creates a controller enforcing the configured type
// allowlist and size ceiling.
func NewController(api Uploader, cfg *config.UploadConfig) *Controller {
	allowed := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[t] = true
	}
	return &Controller{
		api:          api,
		maxFileSize:  cfg.MaxFileSize,
		allowedTypes: allowed,
	}
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Select validates a file and arms the controller for upload. A
// rejected file leaves the controller untouched: no progress, no error
// state, no network call. Selecting while an upload is in flight is not
// permitted.
func (c *Controller) Select(path string) error {
	c.mu.Lock()
	if c.state.Phase == Uploading {
		c.mu.Unlock()
		return ErrUploadInFlight
	}
	c.mu.Unlock()

	if err := c.validate(path); err != nil {
		return err
	}

	c.mu.Lock()
	c.generation++
	c.state = State{Phase: Selected, Path: path}
	c.mu.Unlock()
	return nil
}

// Start uploads the selected file. It is only permitted from Selected:
// a running upload returns ErrUploadInFlight, anything else ErrNoFile.
// On success the created contract's ID is returned; on failure the
// error message is derived from the backend payload when present, else
// a generic network message, and progress is reset to 0 so a stale
// value cannot be mistaken for a new attempt.
func (c *Controller) Start(ctx context.Context) (string, error) {
	c.mu.Lock()
	switch c.state.Phase {
	case Selected:
	case Uploading:
		c.mu.Unlock()
		return "", ErrUploadInFlight
	default:
		c.mu.Unlock()
		return "", ErrNoFile
	}

	c.generation++
	gen := c.generation
	path := c.state.Path
	c.state = State{Phase: Uploading, Path: path, IsUploading: true}
	c.mu.Unlock()

	contract, err := c.api.UploadContract(ctx, path, func(percent int) {
		c.reportProgress(gen, percent)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		// Reset was called mid-transfer; the outcome is discarded.
		if err == nil {
			return contract.ID, nil
		}
		return "", err
	}

	if err != nil {
		c.state = State{
			Phase:        Failed,
			Path:         path,
			ErrorMessage: client.ErrorMessage(err, "Upload failed"),
		}
		return "", err
	}

	c.state = State{
		Phase:      Done,
		Path:       path,
		Progress:   100,
		ContractID: contract.ID,
	}
	return contract.ID, nil
}

// Reset returns the controller to Idle from any state: progress 0, not
// uploading, no error. Used both when clearing a file and before
// retrying.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.state = State{}
}

// reportProgress applies a transport progress callback. Values are kept
// monotonically non-decreasing and capped below 100 until success is
// confirmed by the response.
func (c *Controller) reportProgress(gen, percent int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.state.Phase != Uploading {
		return
	}
	if percent > 99 {
		percent = 99
	}
	if percent > c.state.Progress {
		c.state.Progress = percent
	}
}

// validate enforces the document type allowlist and the size ceiling.
// A file exactly at the ceiling is accepted; one byte over is not.
func (c *Controller) validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("Cannot read file: %v", err)}
	}
	if info.IsDir() {
		return &ValidationError{Reason: "A directory cannot be uploaded"}
	}
	if info.Size() > c.maxFileSize {
		return &ValidationError{
			Reason: fmt.Sprintf("File must not exceed %d MB", c.maxFileSize/(1024*1024)),
		}
	}

	contentType, err := c.detectType(path)
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("Cannot read file: %v", err)}
	}
	if !c.allowedTypes[contentType] {
		return &ValidationError{Reason: "Only PDF or DOCX files are accepted"}
	}
	return nil
}

// detectType maps the file extension to a MIME type, sniffing the
// content for PDFs the way the backend does on its side.
func (c *Controller) detectType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		file, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer file.Close()

		buffer := make([]byte, 512)
		n, err := file.Read(buffer)
		if err != nil && n == 0 {
			return "", err
		}

		detected := http.DetectContentType(buffer[:n])
		if strings.Contains(detected, "pdf") || detected == "application/octet-stream" {
			return "application/pdf", nil
		}
		return detected, nil
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document", nil
	default:
		return "application/octet-stream", nil
	}
}
