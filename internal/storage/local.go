package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iliyamo/insurance-lead-desk/internal/model"
)

// LocalStore writes files under Dir and serves them from
// <BaseURL>/uploads/<name>.
type LocalStore struct {
	Dir     string
	BaseURL string
	Now     func() time.Time
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/"), Now: time.Now}, nil
}

func (s *LocalStore) Save(_ context.Context, originalName, _ string, r io.Reader, _ int64) (*model.PolicyFile, error) {
	name := objectName(s.Now(), originalName)
	f, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return &model.PolicyFile{Name: baseName(originalName), URL: s.BaseURL + "/uploads/" + url.PathEscape(name)}, nil
}
