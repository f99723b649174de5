// Package storage keeps uploaded policy documents, on local disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/iliyamo/insurance-lead-desk/internal/model"
)

var ErrUploadFailed = errors.New("upload failed")

// FileStore saves an uploaded file.  The returned name is the client's
// file name; the URL points at the stored copy.
type FileStore interface {
	Save(ctx context.Context, originalName, contentType string, r io.Reader, size int64) (*model.PolicyFile, error)
}

var (
	_ FileStore = (*LocalStore)(nil)
	_ FileStore = (*MinioStore)(nil)
)

// objectName is "<unixmillis>-<base name>".  Path components of the
// client-supplied name are dropped.
func objectName(now time.Time, originalName string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), baseName(originalName))
}

func baseName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" || base == "" {
		return "file"
	}
	return base
}
