package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/flightdelay/internal/fetcher"
	"github.com/sells-group/flightdelay/internal/model"
)

// RemoteLoader downloads a workbook into CacheDir and parses it. When the
// fetcher supports conditional requests the cached copy is reused until the
// remote ETag changes. A failed refresh falls back to an existing cached copy.
type RemoteLoader struct {
	URL      string
	CacheDir string
	Fetcher  fetcher.Fetcher
}

func (l RemoteLoader) Load(ctx context.Context) (*model.Dataset, error) {
	if err := os.MkdirAll(l.CacheDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "dataset: create cache dir")
	}
	dst := filepath.Join(l.CacheDir, cacheFileName(l.URL))

	if err := l.refresh(ctx, dst); err != nil {
		if _, statErr := os.Stat(dst); statErr != nil {
			return nil, err
		}
		zap.L().Warn("dataset: download failed, using cached copy",
			zap.String("url", l.URL), zap.String("path", dst), zap.Error(err))
	}
	return XLSXLoader{Path: dst}.Load(ctx)
}

func (l RemoteLoader) refresh(ctx context.Context, dst string) error {
	cf, ok := l.Fetcher.(fetcher.ConditionalFetcher)
	if !ok {
		n, err := l.Fetcher.DownloadToFile(ctx, l.URL, dst)
		if err != nil {
			return eris.Wrap(err, "dataset: download")
		}
		zap.L().Info("dataset: downloaded workbook", zap.String("url", l.URL), zap.Int64("bytes", n))
		return nil
	}

	etagPath := dst + ".etag"
	var etag string
	if _, err := os.Stat(dst); err == nil {
		if b, err := os.ReadFile(etagPath); err == nil {
			etag = strings.TrimSpace(string(b))
		}
	}

	body, newTag, changed, err := cf.DownloadIfChanged(ctx, l.URL, etag)
	if err != nil {
		return eris.Wrap(err, "dataset: download")
	}
	if !changed {
		zap.L().Debug("dataset: remote workbook unchanged", zap.String("url", l.URL))
		return nil
	}
	defer body.Close() //nolint:errcheck

	n, err := fetcher.WriteFile(body, dst)
	if err != nil {
		return eris.Wrap(err, "dataset: save download")
	}
	if newTag != "" {
		if err := os.WriteFile(etagPath, []byte(newTag), 0o644); err != nil {
			zap.L().Warn("dataset: could not record etag", zap.Error(err))
		}
	} else if err := os.Remove(etagPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		zap.L().Warn("dataset: could not clear etag", zap.Error(err))
	}
	zap.L().Info("dataset: downloaded workbook", zap.String("url", l.URL), zap.Int64("bytes", n))
	return nil
}

// cacheFileName derives a stable file name from the URL, keeping the base
// name readable.
func cacheFileName(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	prefix := hex.EncodeToString(sum[:6])
	base := "dataset.xlsx"
	if u, err := url.Parse(raw); err == nil {
		if b := path.Base(u.Path); b != "" && b != "/" && b != "." {
			base = b
		}
	}
	return prefix + "-" + base
}
