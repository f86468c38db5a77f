package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

func (w *implWriter) WriteReport(ctx context.Context, r models.RunReport) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	path := filepath.Join(r.Folder, FileName)
	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	w.logger.Info(ctx, "Run report written: %s", path)
	return path, nil
}

// writeAtomic writes to a temp file in the same folder and renames it over
// path, so readers never see a half-written report.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
