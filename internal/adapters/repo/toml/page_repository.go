package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/pagemap-sessions/internal/domain"
	"github.com/bnema/pagemap-sessions/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	pagesPathKey       = "store.path"
	maxVersionsKey     = "store.max_versions"
	defaultMaxVersions = 16
	pagesConfigDir     = ".pms"
	pagesDirName       = "pages"
	sessionFileSuffix  = ".toml"
	pagesFileMode      = 0o600
	pagesDirMode       = 0o700
	tempFilePattern    = ".session-*.toml.tmp"
)

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

// PageRepository keeps page versions on disk, one TOML file per session.
type PageRepository struct {
	root        string
	maxVersions int
}

var _ ports.PageStore = (*PageRepository)(nil)

func NewPageRepository(cfg *viper.Viper) (*PageRepository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	root := cfg.GetString(pagesPathKey)
	if root == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		root = filepath.Join(homeDir, pagesConfigDir, pagesDirName)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve pages path: %w", err)
	}

	maxVersions := cfg.GetInt(maxVersionsKey)
	if maxVersions <= 0 {
		maxVersions = defaultMaxVersions
	}

	return &PageRepository{root: filepath.Clean(absRoot), maxVersions: maxVersions}, nil
}

func (r *PageRepository) Root() string {
	return r.root
}

func (r *PageRepository) StorePage(ctx context.Context, sessionID, pageMap string, page domain.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := r.pathForSession(sessionID)
	if err != nil {
		return err
	}

	mu := lockForPath(path)
	mu.Lock()
	defer mu.Unlock()

	file, err := readSessionFile(path)
	if err != nil {
		return err
	}
	file.applyDefaults()
	file.SessionID = sessionID

	entry := file.pageMap(pageMap)
	if entry == nil {
		file.PageMaps = append(file.PageMaps, pageMapSchema{Name: pageMap})
		entry = &file.PageMaps[len(file.PageMaps)-1]
	}

	pages := make([]pageSchema, 0, len(entry.Pages)+1)
	for _, existing := range entry.Pages {
		if existing.ID == page.ID && existing.Version == page.Version {
			continue
		}
		pages = append(pages, existing)
	}
	pages = append(pages, toPageSchema(page))
	if len(pages) > r.maxVersions {
		pages = pages[len(pages)-r.maxVersions:]
	}
	entry.Pages = pages

	if err := ctx.Err(); err != nil {
		return err
	}

	return writeTOMLFile(path, file)
}

func (r *PageRepository) GetPage(ctx context.Context, sessionID, pageMap string, id, version int) (domain.Page, error) {
	pages, err := r.pages(ctx, sessionID, pageMap)
	if err != nil {
		return domain.Page{}, err
	}

	for i := len(pages) - 1; i >= 0; i-- {
		if pages[i].ID == id && pages[i].Version == version {
			return fromPageSchema(pages[i]), nil
		}
	}

	return domain.Page{}, domain.ErrPageNotFound
}

func (r *PageRepository) LatestPage(ctx context.Context, sessionID, pageMap string) (domain.Page, error) {
	pages, err := r.pages(ctx, sessionID, pageMap)
	if err != nil {
		return domain.Page{}, err
	}
	if len(pages) == 0 {
		return domain.Page{}, domain.ErrPageNotFound
	}

	return fromPageSchema(pages[len(pages)-1]), nil
}

func (r *PageRepository) RemoveSession(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := r.pathForSession(sessionID)
	if err != nil {
		return err
	}

	mu := lockForPath(path)
	mu.Lock()
	defer mu.Unlock()

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file %q: %w", sessionID, err)
	}

	return nil
}

func (r *PageRepository) pages(ctx context.Context, sessionID, pageMap string) ([]pageSchema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := r.pathForSession(sessionID)
	if err != nil {
		return nil, err
	}

	mu := lockForPath(path)
	mu.RLock()
	defer mu.RUnlock()

	file, err := readSessionFile(path)
	if err != nil {
		return nil, err
	}

	entry := file.pageMap(pageMap)
	if entry == nil {
		return nil, domain.ErrPageNotFound
	}

	return entry.Pages, nil
}

func (r *PageRepository) pathForSession(sessionID string) (string, error) {
	trimmed := strings.TrimSpace(sessionID)
	if trimmed == "" {
		return "", errors.New("session id is empty")
	}
	if strings.ContainsAny(trimmed, `/\`) || trimmed == "." || trimmed == ".." {
		return "", fmt.Errorf("invalid session id %q", sessionID)
	}

	return filepath.Join(r.root, trimmed+sessionFileSuffix), nil
}

func readSessionFile(path string) (sessionFileSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sessionFileSchema{}, nil
		}
		return sessionFileSchema{}, fmt.Errorf("read session file: %w", err)
	}

	var file sessionFileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return sessionFileSchema{}, fmt.Errorf("decode session file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return sessionFileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func writeTOMLFile(path string, file any) error {
	if err := os.MkdirAll(filepath.Dir(path), pagesDirMode); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tempFile.Chmod(pagesFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}

	cleanup = false
	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
