package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

// MaxCatalogFileSize caps a single catalog file or download
const MaxCatalogFileSize = 1 << 20

// DefaultPatterns selects catalog files inside a catalog directory
var DefaultPatterns = []string{"**/*.yaml", "**/*.yml", "**/*.toml", "**/*.json"}

// catalogFile is a document holding several templates. A document may also
// hold a single template at the top level.
type catalogFile struct {
	Templates []types.Template `json:"templates" yaml:"templates" toml:"templates"`
}

// SeedResult summarizes one catalog load
type SeedResult struct {
	Source    string `json:"source"`
	Files     int    `json:"files"`
	Failed    int    `json:"failed"`
	Templates int    `json:"templates"`
	SyncResult
}

// Seeder loads templates from a catalog directory, file or URL into the registry
type Seeder struct {
	registry *Registry
	logger   *zap.Logger
	patterns []string
	client   *retryablehttp.Client
}

// NewSeeder creates a new catalog seeder
func NewSeeder(registry *Registry, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = 15 * time.Second
	client.Logger = nil

	return &Seeder{
		registry: registry,
		logger:   logger,
		patterns: DefaultPatterns,
		client:   client,
	}
}

// WithPatterns replaces the doublestar patterns used to select catalog files
func (s *Seeder) WithPatterns(patterns ...string) *Seeder {
	if len(patterns) > 0 {
		s.patterns = patterns
	}
	return s
}

// Seed loads source and syncs the registry with it. Files that fail to parse
// are logged and skipped; the rest of the catalog still loads.
func (s *Seeder) Seed(ctx context.Context, source string) (SeedResult, error) {
	res := SeedResult{Source: source}
	s.logger.Info("Seeding templates", zap.String("source", source))

	var (
		tmpls []types.Template
		err   error
	)
	switch {
	case IsRemote(source):
		tmpls, err = s.Fetch(ctx, source)
		res.Files = 1
	default:
		tmpls, res.Files, res.Failed, err = s.LoadDir(ctx, source)
	}
	if err != nil {
		return res, err
	}

	res.Templates = len(tmpls)
	res.SyncResult = s.registry.Sync(source, tmpls)

	s.logger.Info("Seeding complete",
		zap.String("source", source),
		zap.Int("files", res.Files),
		zap.Int("failed", res.Failed),
		zap.Int("added", res.Added),
		zap.Int("updated", res.Updated),
		zap.Int("removed", res.Removed),
		zap.Int("rejected", res.Rejected))
	return res, nil
}

// IsRemote reports whether source is an http(s) URL
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// LoadDir parses every matching file under root. root may also be a single file.
func (s *Seeder) LoadDir(ctx context.Context, root string) (tmpls []types.Template, files, failed int, err error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("catalog %s: %w", root, err)
	}
	if !info.IsDir() {
		parsed, err := s.loadFile(root)
		if err != nil {
			return nil, 1, 1, err
		}
		return parsed, 1, 0, nil
	}

	var (
		mu     sync.Mutex
		byFile = make(map[string][]types.Template)
	)

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil || d.IsDir() {
			return nil
		}
		if !s.Matches(root, p) {
			return nil
		}

		parsed, err := s.loadFile(p)

		mu.Lock()
		defer mu.Unlock()
		files++
		if err != nil {
			failed++
			s.logger.Warn("Failed to load catalog file", zap.String("path", p), zap.Error(err))
			return nil
		}
		byFile[p] = parsed
		return nil
	})
	if err != nil {
		return nil, files, failed, err
	}

	// fastwalk visits files concurrently; merge in path order so duplicates resolve the same way every time
	paths := make([]string, 0, len(byFile))
	for p := range byFile {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	seen := make(map[string]string)
	for _, p := range paths {
		for _, tmpl := range byFile[p] {
			if prev, dup := seen[tmpl.Tag]; dup {
				s.logger.Warn("Duplicate template tag", zap.String("tag", tmpl.Tag), zap.String("first", prev), zap.String("second", p))
			}
			seen[tmpl.Tag] = p
			tmpls = append(tmpls, tmpl)
		}
	}
	return dedupe(tmpls), files, failed, nil
}

// Matches reports whether the file at p (under root) is a catalog file
func (s *Seeder) Matches(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range s.patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (s *Seeder) loadFile(p string) ([]types.Template, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxCatalogFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxCatalogFileSize {
		return nil, fmt.Errorf("catalog file exceeds %d bytes", MaxCatalogFileSize)
	}

	tmpls, err := Parse(p, data)
	if err != nil {
		return nil, err
	}
	for i := range tmpls {
		tmpls[i].Source = p
	}
	return tmpls, nil
}

// Fetch downloads and parses a remote catalog
func (s *Seeder) Fetch(ctx context.Context, url string) ([]types.Template, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml, application/toml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxCatalogFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if len(data) > MaxCatalogFileSize {
		return nil, fmt.Errorf("catalog %s exceeds %d bytes", url, MaxCatalogFileSize)
	}

	name := path.Base(strings.SplitN(url, "?", 2)[0])
	if ext := formatFromContentType(resp.Header.Get("Content-Type")); ext != "" && filepath.Ext(name) == "" {
		name += ext
	}

	tmpls, err := Parse(name, data)
	if err != nil {
		return nil, err
	}
	for i := range tmpls {
		tmpls[i].Source = url
	}
	return tmpls, nil
}

func formatFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "yaml"):
		return ".yaml"
	case strings.Contains(ct, "toml"):
		return ".toml"
	case strings.Contains(ct, "json"):
		return ".json"
	default:
		return ""
	}
}

// Parse decodes a catalog document. The format is chosen by file extension;
// anything unrecognized is treated as JSON.
func Parse(name string, data []byte) ([]types.Template, error) {
	var unmarshal func([]byte, interface{}) error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	case ".toml":
		unmarshal = toml.Unmarshal
	default:
		unmarshal = sonic.Unmarshal
	}

	var catalog catalogFile
	if err := unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if len(catalog.Templates) > 0 {
		return catalog.Templates, nil
	}

	var single types.Template
	if err := unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if single.Tag == "" {
		return nil, fmt.Errorf("parse %s: no templates found", name)
	}
	return []types.Template{single}, nil
}

// dedupe keeps the last template for each tag, preserving first-seen order
func dedupe(tmpls []types.Template) []types.Template {
	index := make(map[string]int, len(tmpls))
	out := make([]types.Template, 0, len(tmpls))
	for _, tmpl := range tmpls {
		if i, ok := index[tmpl.Tag]; ok {
			out[i] = tmpl
			continue
		}
		index[tmpl.Tag] = len(out)
		out = append(out, tmpl)
	}
	return out
}
