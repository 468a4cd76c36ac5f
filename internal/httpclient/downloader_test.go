package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meza/modrinth-pack-builder/internal/environment"
)

type doerFunc func(*http.Request) (*http.Response, error)

func (doer doerFunc) Do(req *http.Request) (*http.Response, error) {
	return doer(req)
}

type closeErrorBody struct {
	reader   *strings.Reader
	closeErr error
}

func (body *closeErrorBody) Read(p []byte) (int, error) {
	return body.reader.Read(p)
}

func (body *closeErrorBody) Close() error {
	return body.closeErr
}

type closeErrorFile struct {
	afero.File
	closeErr error
}

func (file closeErrorFile) Close() error {
	return errors.Join(file.File.Close(), file.closeErr)
}

type closeErrorFs struct {
	afero.Fs
	closeErr error
}

func (filesystem closeErrorFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	file, err := filesystem.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return closeErrorFile{File: file, closeErr: filesystem.closeErr}, nil
}

type removeErrorFs struct {
	afero.Fs
	failPath string
}

func (filesystem removeErrorFs) Remove(name string) error {
	if name == filesystem.failPath {
		return errors.New("remove failed")
	}
	return filesystem.Fs.Remove(name)
}

type readErrorBody struct {
	err error
}

func (body *readErrorBody) Read([]byte) (int, error) {
	return 0, body.err
}

func (body *readErrorBody) Close() error {
	return nil
}

func okResponse(body io.ReadCloser) *http.Response {
	return &http.Response{StatusCode: http.StatusOK, Body: body, ContentLength: -1}
}

func TestDownloadFile(t *testing.T) {
	t.Run("successful download", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		var userAgent string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userAgent = r.Header.Get("User-Agent")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("file content"))
		}))
		defer server.Close()

		require.NoError(t, fs.MkdirAll("/mods", 0755))
		err := DownloadFile(context.Background(), server.URL, "/mods/sodium.jar", server.Client(), fs)
		require.NoError(t, err)

		content, err := afero.ReadFile(fs, "/mods/sodium.jar")
		require.NoError(t, err)
		assert.Equal(t, "file content", string(content))
		assert.Equal(t, environment.UserAgent(), userAgent)
	})

	t.Run("overwrites an existing file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "mod.jar", []byte("an older and longer payload"), 0644))

		doer := doerFunc(func(*http.Request) (*http.Response, error) {
			return okResponse(io.NopCloser(strings.NewReader("new"))), nil
		})

		require.NoError(t, DownloadFile(context.Background(), "https://cdn.example/mod.jar", "mod.jar", doer, fs))
		content, err := afero.ReadFile(fs, "mod.jar")
		require.NoError(t, err)
		assert.Equal(t, "new", string(content))
	})

	t.Run("HTTP request error", func(t *testing.T) {
		doer := doerFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})

		err := DownloadFile(context.Background(), "https://cdn.example/mod.jar", "mod.jar", doer, afero.NewMemMapFs())
		assert.ErrorContains(t, err, "failed to download file")
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("HTTP request build error", func(t *testing.T) {
		err := DownloadFile(context.Background(), "http://[::1", "mod.jar", doerFunc(nil), afero.NewMemMapFs())
		assert.ErrorContains(t, err, "failed to build download request")
	})

	t.Run("non-2xx response leaves no file", func(t *testing.T) {
		fs := afero.NewMemMapFs()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("missing"))
		}))
		defer server.Close()

		err := DownloadFile(context.Background(), server.URL, "mod.jar", server.Client(), fs)
		assert.ErrorContains(t, err, "download request failed with status 404")
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)

		exists, existsErr := afero.Exists(fs, "mod.jar")
		assert.NoError(t, existsErr)
		assert.False(t, exists)
	})

	t.Run("timeout error is passed through", func(t *testing.T) {
		doer := doerFunc(func(*http.Request) (*http.Response, error) {
			return nil, &TimeoutError{Err: context.DeadlineExceeded}
		})

		err := DownloadFile(context.Background(), "https://cdn.example/mod.jar", "mod.jar", doer, afero.NewMemMapFs())
		assert.Equal(t, "network request timed out", err.Error())
	})

	t.Run("file creation error", func(t *testing.T) {
		fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
		doer := doerFunc(func(*http.Request) (*http.Response, error) {
			return okResponse(io.NopCloser(strings.NewReader("content"))), nil
		})

		err := DownloadFile(context.Background(), "https://cdn.example/mod.jar", "/mods/mod.jar", doer, fs)
		assert.ErrorContains(t, err, "failed to create file")
	})

	t.Run("short body removes partial file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		doer := doerFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode:    http.StatusOK,
				Body:          io.NopCloser(strings.NewReader("abc")),
				ContentLength: 10,
			}, nil
		})

		err := DownloadFile(context.Background(), "https://cdn.example/mod.jar", "mod.jar", doer, fs)
		assert.ErrorContains(t, err, "failed to write file")
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		exists, _ := afero.Exists(fs, "mod.jar")
		assert.False(t, exists)
	})

	t.Run("read error removes partial file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		readErr := errors.New("read failed")
		doer := doerFunc(func(*http.Request) (*http.Response, error) {
			return okResponse(&readErrorBody{err: readErr}), nil
		})

		err := DownloadFile(context.Background(), "https://cdn.example/mod.jar", "mod.jar", doer, fs)
		assert.ErrorIs(t, err, readErr)
		exists, _ := afero.Exists(fs, "mod.jar")
		assert.False(t, exists)
	})

	t.Run("response body close error returns error", func(t *testing.T) {
		bodyErr := errors.New("close failed")
		doer := doerFunc(func(*http.Request) (*http.Response, error) {
			return okResponse(&closeErrorBody{reader: strings.NewReader("content"), closeErr: bodyErr}), nil
		})

		err := DownloadFile(context.Background(), "https://cdn.example/mod.jar", "mod.jar", doer, afero.NewMemMapFs())
		assert.ErrorIs(t, err, bodyErr)
	})

	t.Run("file close error removes file", func(t *testing.T) {
		base := afero.NewMemMapFs()
		fs := closeErrorFs{Fs: base, closeErr: errors.New("disk full")}
		doer := doerFunc(func(*http.Request) (*http.Response, error) {
			return okResponse(io.NopCloser(strings.NewReader("content"))), nil
		})

		err := DownloadFile(context.Background(), "https://cdn.example/mod.jar", "mod.jar", doer, fs)
		assert.ErrorContains(t, err, "disk full")
		exists, _ := afero.Exists(base, "mod.jar")
		assert.False(t, exists)
	})

	t.Run("cleanup failure is joined", func(t *testing.T) {
		fs := removeErrorFs{Fs: afero.NewMemMapFs(), failPath: "mod.jar"}
		doer := doerFunc(func(*http.Request) (*http.Response, error) {
			return okResponse(&readErrorBody{err: errors.New("read failed")}), nil
		})

		err := DownloadFile(context.Background(), "https://cdn.example/mod.jar", "mod.jar", doer, fs)
		assert.ErrorContains(t, err, "failed to remove partial file")
	})
}
