// Package fetcher downloads dataset files over HTTP or FTP and reads workbook
// and CSV tables into string rows.
package fetcher

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// Fetcher downloads a remote file.
type Fetcher interface {
	// Download fetches the URL and returns the body. The caller closes it.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL into path and returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// ConditionalFetcher can skip a download when the remote copy is unchanged.
type ConditionalFetcher interface {
	Fetcher

	// DownloadIfChanged returns (body, newETag, changed, error). When the
	// remote ETag equals etag, body is nil and changed is false.
	DownloadIfChanged(ctx context.Context, url string, etag string) (io.ReadCloser, string, bool, error)
}

// WriteFile copies body into a file at path, replacing it atomically.
func WriteFile(body io.Reader, path string) (int64, error) {
	tmp := path + ".part"
	file, err := os.Create(tmp)
	if err != nil {
		return 0, eris.Wrap(err, "fetcher: create file")
	}

	n, err := io.Copy(file, body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return n, eris.Wrap(err, "fetcher: write file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return n, eris.Wrap(err, "fetcher: rename file")
	}
	return n, nil
}
