package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/modrinth-pack-builder/internal/environment"
	"github.com/meza/modrinth-pack-builder/internal/fileutils"
	"github.com/meza/modrinth-pack-builder/internal/perf"
)

// StatusError is returned when a download answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (statusErr *StatusError) Error() string {
	return fmt.Sprintf("download request failed with status %d", statusErr.StatusCode)
}

// DownloadFile streams url into path. Any failure after the file was created
// removes it so no truncated artifact is left behind.
func DownloadFile(ctx context.Context, url string, path string, client Doer, filesystem ...afero.Fs) (err error) {
	ctx, span := perf.StartSpan(ctx, "download.file",
		perf.WithAttributes(
			attribute.String("url", url),
			attribute.String("path", path),
		),
	)
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	fs := fileutils.InitFilesystem(filesystem...)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}
	request.Header.Set("User-Agent", environment.UserAgent())

	response, err := client.Do(request)
	if err != nil {
		var timeoutErr *TimeoutError
		if errors.As(err, &timeoutErr) {
			return timeoutErr
		}
		return fmt.Errorf("failed to download file: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		closeErr := drainAndClose(response.Body)
		return errors.Join(&StatusError{URL: url, StatusCode: response.StatusCode}, closeErr)
	}

	file, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		_ = response.Body.Close()
		return fmt.Errorf("failed to create file: %w", err)
	}

	written, copyErr := io.Copy(file, response.Body)
	bodyCloseErr := response.Body.Close()
	fileCloseErr := file.Close()
	span.SetAttributes(attribute.Int64("bytes", written))

	if copyErr == nil && response.ContentLength > 0 && written != response.ContentLength {
		copyErr = io.ErrUnexpectedEOF
	}
	if copyErr != nil {
		return removePartial(fs, path, fmt.Errorf("failed to write file: %w", WrapTimeoutError(copyErr)))
	}
	if fileCloseErr != nil {
		return removePartial(fs, path, fmt.Errorf("failed to close file: %w", fileCloseErr))
	}
	if bodyCloseErr != nil {
		return fmt.Errorf("failed to close response body: %w", bodyCloseErr)
	}

	return nil
}

func removePartial(fs afero.Fs, path string, cause error) error {
	if removeErr := fs.Remove(path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		return errors.Join(cause, fmt.Errorf("failed to remove partial file: %w", removeErr))
	}
	return cause
}
