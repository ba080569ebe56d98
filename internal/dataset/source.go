package dataset

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/flightdelay/internal/fetcher"
	"github.com/sells-group/flightdelay/internal/store"
)

// Source formats accepted by NewLoader.
const (
	FormatAuto     = "auto"
	FormatXLSX     = "xlsx"
	FormatCSV      = "csv"
	FormatDatabase = "db"
)

// SourceConfig selects where the dataset comes from.
type SourceConfig struct {
	Source   string
	Format   string
	CacheDir string

	// Remote downloads.
	Timeout    time.Duration
	MaxRetries int
	RateLimit  float64 // requests per second, 0 means unlimited

	Pool *store.PoolConfig
}

// NewLoader picks a Loader for cfg. With FormatAuto the source decides:
// a database DSN, an http(s) or ftp URL, a directory of CSV files, or a
// workbook path.
func NewLoader(cfg SourceConfig) (Loader, error) {
	src := strings.TrimSpace(cfg.Source)
	if src == "" {
		return nil, eris.New("dataset: empty source")
	}
	format := strings.ToLower(cfg.Format)
	if format == "" || format == FormatAuto {
		format = detectFormat(src)
	}

	switch format {
	case FormatDatabase, "sqlite", "postgres":
		if !store.IsDSN(src) {
			return nil, eris.Errorf("dataset: %q is not a database dsn", src)
		}
		return StoreLoader{DSN: src, Pool: cfg.Pool}, nil
	case FormatCSV:
		return CSVLoader{Dir: src}, nil
	case FormatXLSX:
		if isRemote(src) {
			f, err := remoteFetcher(src, cfg)
			if err != nil {
				return nil, err
			}
			dir := cfg.CacheDir
			if dir == "" {
				dir = os.TempDir()
			}
			return RemoteLoader{URL: src, CacheDir: dir, Fetcher: f}, nil
		}
		return XLSXLoader{Path: src}, nil
	default:
		return nil, eris.Errorf("dataset: unknown format %q", cfg.Format)
	}
}

func detectFormat(src string) string {
	if store.IsDSN(src) {
		return FormatDatabase
	}
	if isRemote(src) {
		return FormatXLSX
	}
	if fi, err := os.Stat(src); err == nil && fi.IsDir() {
		return FormatCSV
	}
	return FormatXLSX
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") ||
		strings.HasPrefix(src, "https://") ||
		strings.HasPrefix(src, "ftp://")
}

func remoteFetcher(src string, cfg SourceConfig) (fetcher.Fetcher, error) {
	if strings.HasPrefix(src, "ftp://") {
		return fetcher.NewFTPFetcher(fetcher.FTPOptions{Timeout: cfg.Timeout, MaxRetries: cfg.MaxRetries}), nil
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		Limiter:    rate.NewLimiter(limit, 1),
	}), nil
}
