package deploy

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tokenforge/deployer/internal/logger"
)

// Recorder persists one JSON record per deployment run, keyed by user id.
// The record schema is owned by the backend that reads it; this side only
// writes opaque JSON.
type Recorder struct {
	recordsDir string
	logger     *slog.Logger
}

func NewRecorder(recordsDir string) *Recorder {
	return &Recorder{
		recordsDir: recordsDir,
		logger:     logger.Named("deploy_recorder"),
	}
}

type record struct {
	RecordedAt time.Time `json:"recordedAt"`
	Request    Request   `json:"request"`
	Result     Result    `json:"result"`
}

// Record writes the deployment outcome and returns the record's path.
func (r *Recorder) Record(req Request, res Result) (string, error) {
	userID := req.UserID
	if userID == "" {
		userID = "anonymous"
	}

	dir := filepath.Join(r.recordsDir, userID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create records directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.json", time.Now().UTC().Format("20060102T150405Z"), req.ContractName)
	path := filepath.Join(dir, name)

	content, err := json.MarshalIndent(record{
		RecordedAt: time.Now().UTC(),
		Request:    req,
		Result:     res,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal deployment record: %w", err)
	}

	if err := os.WriteFile(path, append(content, '\n'), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	r.logger.With("path", path).Info("deployment record written")

	return path, nil
}
