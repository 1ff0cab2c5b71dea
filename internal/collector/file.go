package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"PortfolioPulse/internal/model"
)

// FileSource reads a JSON array of investor documents. The file is re-read on every call so
// edits show up without a restart.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Name() string { return "file" }

func (f *FileSource) load() ([]model.Investor, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read investors file: %w", err)
	}
	var investors []model.Investor
	if err := json.Unmarshal(data, &investors); err != nil {
		return nil, fmt.Errorf("parse investors file: %w", err)
	}
	return investors, nil
}

func (f *FileSource) List(_ context.Context, limit int) ([]model.Investor, error) {
	investors, err := f.load()
	if err != nil {
		return nil, err
	}
	return head(investors, limit), nil
}

func (f *FileSource) Get(_ context.Context, investorID string) (*model.Investor, error) {
	investors, err := f.load()
	if err != nil {
		return nil, err
	}
	return find(investors, investorID)
}

func (f *FileSource) Close() error { return nil }
