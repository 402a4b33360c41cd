// Package transfer resolves a task package reference to a local artifact
// path, the one concrete backing for the otherwise-external transfer
// service: "resolve a package descriptor to a local artifact path, with
// optional progress callback."
package transfer

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
)

// Progress reports (current, total) bytes as an artifact is fetched.
// total is 0 when the source doesn't report a size up front.
type Progress func(current, total int64)

// Adapter resolves task packages into local files under a cache directory.
type Adapter struct {
	cacheDir string
	client   *http.Client
}

// New builds an Adapter that places resolved artifacts under cacheDir.
func New(cacheDir string) *Adapter {
	return &Adapter{cacheDir: cacheDir, client: http.DefaultClient}
}

// Deploy resolves taskPackage to a local path. A "file://" or bare local
// path reference is used as-is (after existence-checking); an "http(s)://"
// reference is downloaded into the cache directory, reporting progress on
// sink if supplied. sink, if non-nil, is always called at least once with
// the final byte count before Deploy returns.
func (a *Adapter) Deploy(ctx context.Context, taskPackage string, sink Progress) (string, error) {
	u, err := url.Parse(taskPackage)
	if err != nil || u.Scheme == "" || u.Scheme == "file" {
		path := taskPackage
		if u != nil && u.Scheme == "file" {
			path = u.Path
		}
		if _, err := os.Stat(path); err != nil {
			return "", apperr.Wrap(apperr.Transport, err, "resolve local task package %q", path)
		}
		if sink != nil {
			info, _ := os.Stat(path)
			sink(info.Size(), info.Size())
		}
		return path, nil
	}

	return a.download(ctx, u, sink)
}

func (a *Adapter) download(ctx context.Context, u *url.URL, sink Progress) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", apperr.Wrap(apperr.Transport, err, "build download request for %s", u)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.Transport, err, "download %s", u)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", apperr.New(apperr.Transport, "download %s: status %d", u, resp.StatusCode)
	}

	if err := os.MkdirAll(a.cacheDir, 0o755); err != nil {
		return "", apperr.Wrap(apperr.Transport, err, "create cache dir %q", a.cacheDir)
	}
	dest := filepath.Join(a.cacheDir, filepath.Base(u.Path))

	f, err := os.Create(dest)
	if err != nil {
		return "", apperr.Wrap(apperr.Transport, err, "create artifact %q", dest)
	}
	defer f.Close()

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	var current int64
	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				return "", apperr.Wrap(apperr.Transport, err, "write artifact %q", dest)
			}
			current += int64(n)
			if sink != nil {
				sink(current, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", apperr.Wrap(apperr.Transport, readErr, "read download body for %s", u)
		}
	}

	if sink != nil {
		sink(current, current)
	}
	return dest, nil
}
