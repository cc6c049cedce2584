package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CostListPrefix is the key prefix every archived cost list lives under.
const CostListPrefix = "cost-lists"

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ObjectStorage captures the S3-compatible operations used to archive cost lists.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, w io.Writer) error
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// CostListKey builds cost-lists/YYYY/MM/DD/<uuid>-<name> for an upload received at t.
func CostListKey(t time.Time, sourceName string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(sourceName), "\\", "/"))
	name = strings.Trim(unsafeKeyChars.ReplaceAllString(name, "_"), "_")
	if strings.Trim(name, ".") == "" {
		name = "cost-list.csv"
	}

	t = t.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s-%s", CostListPrefix, t.Year(), int(t.Month()), t.Day(), uuid.NewString(), name)
}

// SourceName recovers the original file name from a CostListKey.
func SourceName(key string) string {
	base := path.Base(key)
	if len(base) > 37 && base[36] == '-' {
		if _, err := uuid.Parse(base[:36]); err == nil {
			return base[37:]
		}
	}
	return base
}

// IsCostListKey reports whether key points inside the cost-list archive.
func IsCostListKey(key string) bool {
	clean := path.Clean(key)
	return clean == key && strings.HasPrefix(key, CostListPrefix+"/") && !strings.Contains(key, "..")
}
