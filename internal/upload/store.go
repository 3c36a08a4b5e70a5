// Package upload stores evidence files on local disk and serves them back
// under a stable URL.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// StoredFile describes a persisted evidence file. LocalPath is what the
// analysis service reads; URL is what clients fetch.
type StoredFile struct {
	Name      string
	LocalPath string
	URL       string
}

// DiskStore writes uploads into a single directory with timestamp-prefixed
// names. Two uploads of the same filename in the same millisecond get a
// numeric suffix; O_EXCL guarantees no write ever truncates another.
type DiskStore struct {
	dir           string
	publicBaseURL string
	now           func() time.Time
}

func NewDiskStore(dir, publicBaseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{
		dir:           dir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}, nil
}

// Dir returns the directory served under /uploads.
func (s *DiskStore) Dir() string { return s.dir }

// Save persists the file under a server-assigned name.
func (s *DiskStore) Save(originalName string, r io.Reader) (*StoredFile, error) {
	base := strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + sanitizeName(originalName)

	name, f, err := s.createExclusive(base)
	if err != nil {
		return nil, fmt.Errorf("create evidence file: %w", err)
	}
	localPath := filepath.Join(s.dir, name)
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(localPath)
		return nil, fmt.Errorf("write evidence file: %w", err)
	}

	return &StoredFile{
		Name:      name,
		LocalPath: localPath,
		URL:       s.publicBaseURL + "/uploads/" + name,
	}, nil
}

// createExclusive opens a fresh file for base, suffixing the stem when the
// name is already taken so same-millisecond uploads stay distinct.
func (s *DiskStore) createExclusive(base string) (string, *os.File, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	name := base
	for attempt := 1; ; attempt++ {
		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return name, f, nil
		}
		if !os.IsExist(err) {
			return "", nil, err
		}
		name = stem + "-" + strconv.Itoa(attempt) + ext
	}
}

// sanitizeName strips path separators and anything else that could escape
// the upload directory, keeping the original name readable.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "evidence"
	}
	return b.String()
}
