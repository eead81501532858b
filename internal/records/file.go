package records

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"
)

// datastoreHeader opens every write of the datastore file. Lines starting
// with '#' and blank lines are skipped on load.
const datastoreHeader = `# DNS Records File - Enhanced UUID Format
# Format: id:name:ip:ttl:type:class:value
#   id:    UUID v4 identifier, assigned by the server
#   ip:    empty for records without an address
#   value: present only for CNAME and TXT records
# Examples:
#   550e8400-e29b-41d4-a716-446655440000:example.com:93.184.216.34:300:A:IN
#   6ba7b810-9dad-11d1-80b4-00c04fd430c8:alias.example.com::300:CNAME:IN:example.com
`

// FileProvider persists the record set as one line per record in a
// colon-separated text file. Every save is a full-file rewrite.
type FileProvider struct {
	path string
}

// NewFileProvider returns a provider over the file at path. The file need
// not exist yet; Initialize creates it.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Path returns the datastore file path.
func (p *FileProvider) Path() string { return p.path }

// Initialize writes a header-only file when none exists. Existing files,
// including legacy-format ones, are left untouched.
func (p *FileProvider) Initialize(ctx context.Context) error {
	if _, err := os.Stat(p.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return wrapIO("stat datastore", err)
	}
	if err := os.WriteFile(p.path, []byte(datastoreHeader), 0o644); err != nil {
		return wrapIO("create datastore", err)
	}
	slog.Info("created datastore file", "path", p.path)
	return nil
}

// HealthCheck verifies the datastore file is openable for writing.
func (p *FileProvider) HealthCheck(ctx context.Context) error {
	f, err := os.OpenFile(p.path, os.O_RDWR, 0)
	if err != nil {
		return wrapIO("open datastore", err)
	}
	return f.Close()
}

// ValidateFormat reports whether the first record line is in the
// canonical UUID shape. A file with no record lines counts as canonical.
func (p *FileProvider) ValidateFormat(ctx context.Context) (bool, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return false, wrapIO("open datastore", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return isCanonicalLine(line), nil
	}
	if err := sc.Err(); err != nil {
		return false, wrapIO("scan datastore", err)
	}
	return true, nil
}

// LoadAll reads the whole file. Malformed lines are logged and skipped so
// one bad entry never takes the server down.
func (p *FileProvider) LoadAll(ctx context.Context) (map[string]Record, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, wrapIO("open datastore", err)
	}
	defer f.Close()

	recs := make(map[string]Record)
	loadedAt := time.Now().UTC()
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := ParseLine(line, loadedAt)
		if err != nil {
			slog.Warn("skipping invalid datastore line",
				"path", p.path, "line", lineNo, "err", err)
			continue
		}
		recs[rec.ID] = rec
	}
	if err := sc.Err(); err != nil {
		return nil, wrapIO("scan datastore", err)
	}
	return recs, nil
}

// SaveAll rewrites the file: header first, then one canonical line per
// record in listing order.
//
// TODO: switch to write-temp-then-rename so a crash mid-write cannot
// leave a truncated file.
func (p *FileProvider) SaveAll(ctx context.Context, recs map[string]Record) error {
	f, err := os.Create(p.path)
	if err != nil {
		return wrapIO("create datastore", err)
	}

	sorted := make([]Record, 0, len(recs))
	for _, rec := range recs {
		sorted = append(sorted, rec)
	}
	sortRecords(sorted)

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(datastoreHeader + "\n"); err != nil {
		f.Close()
		return wrapIO("write datastore header", err)
	}
	for _, rec := range sorted {
		if _, err := w.WriteString(EncodeLine(rec) + "\n"); err != nil {
			f.Close()
			return wrapIO("write datastore record", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return wrapIO("flush datastore", err)
	}
	if err := f.Close(); err != nil {
		return wrapIO("close datastore", err)
	}
	return nil
}

// Close is a no-op; the provider holds no open handles between calls.
func (p *FileProvider) Close() error { return nil }
