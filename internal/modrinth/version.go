package modrinth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/modrinth-pack-builder/internal/globalerrors"
	"github.com/meza/modrinth-pack-builder/internal/httpclient"
	"github.com/meza/modrinth-pack-builder/internal/models"
	"github.com/meza/modrinth-pack-builder/internal/perf"
)

type VersionFileHash struct {
	Sha1   string `json:"sha1"`
	Sha512 string `json:"sha512"`
}

type VersionFile struct {
	FileName string          `json:"filename"`
	Hashes   VersionFileHash `json:"hashes"`
	Primary  bool            `json:"primary"`
	Size     int64           `json:"size"`
	URL      string          `json:"url"`
}

type Version struct {
	ID            string             `json:"id"`
	ProjectID     string             `json:"project_id"`
	Name          string             `json:"name"`
	VersionNumber string             `json:"version_number"`
	DatePublished time.Time          `json:"date_published"`
	Files         []VersionFile      `json:"files"`
	GameVersions  []string           `json:"game_versions"`
	Loaders       []models.Loader    `json:"loaders"`
	Type          models.ReleaseType `json:"version_type"`
}

// PreferredFile returns the primary file, or the first one when none is
// flagged. The second value is false for a version without files.
func (version Version) PreferredFile() (VersionFile, bool) {
	if len(version.Files) == 0 {
		return VersionFile{}, false
	}
	for _, file := range version.Files {
		if file.Primary {
			return file, true
		}
	}
	return version.Files[0], true
}

type Versions []Version

// Latest returns the most recently published version. Equal timestamps keep
// the registry's response order.
func (versions Versions) Latest() (Version, bool) {
	if len(versions) == 0 {
		return Version{}, false
	}
	sorted := make(Versions, len(versions))
	copy(sorted, versions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DatePublished.After(sorted[j].DatePublished)
	})
	return sorted[0], true
}

// FindFile searches every version in response order for an exact filename.
func (versions Versions) FindFile(fileName string) (VersionFile, bool) {
	for _, version := range versions {
		for _, file := range version.Files {
			if file.FileName == fileName {
				return file, true
			}
		}
	}
	return VersionFile{}, false
}

type VersionLookup struct {
	ProjectID    string
	Loaders      []models.Loader
	GameVersions []string
}

func GetVersionsForProject(ctx context.Context, lookup *VersionLookup, client httpclient.Doer) (versions Versions, err error) {
	ctx, span := perf.StartSpan(ctx, "api.modrinth.version.list", perf.WithAttributes(attribute.String("project_id", lookup.ProjectID)))
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	endpoint, err := url.Parse(fmt.Sprintf("%s/v2/project/%s/version", GetBaseURL(), url.PathEscape(lookup.ProjectID)))
	if err != nil {
		return nil, globalerrors.ProjectAPIErrorWrap(err, lookup.ProjectID)
	}

	query := url.Values{}
	if len(lookup.GameVersions) > 0 {
		gameVersionsJSON, marshalErr := json.Marshal(lookup.GameVersions)
		if marshalErr != nil {
			return nil, globalerrors.ProjectAPIErrorWrap(marshalErr, lookup.ProjectID)
		}
		query.Set("game_versions", string(gameVersionsJSON))
	}
	if len(lookup.Loaders) > 0 {
		loadersJSON, marshalErr := json.Marshal(lookup.Loaders)
		if marshalErr != nil {
			return nil, globalerrors.ProjectAPIErrorWrap(marshalErr, lookup.ProjectID)
		}
		query.Set("loaders", string(loadersJSON))
	}
	endpoint.RawQuery = query.Encode()

	request, err := newRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, globalerrors.ProjectAPIErrorWrap(err, lookup.ProjectID)
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, globalerrors.ProjectAPIErrorWrap(httpclient.WrapTimeoutError(err), lookup.ProjectID)
	}
	defer closeBody(response.Body, &err)

	if response.StatusCode == http.StatusNotFound {
		return nil, &globalerrors.ProjectNotFoundError{ProjectID: lookup.ProjectID}
	}

	if response.StatusCode != http.StatusOK {
		return nil, globalerrors.ProjectAPIErrorWrap(errors.Errorf("unexpected status code: %d", response.StatusCode), lookup.ProjectID)
	}

	result := Versions{}
	if decodeErr := json.NewDecoder(response.Body).Decode(&result); decodeErr != nil {
		return nil, globalerrors.ProjectAPIErrorWrap(fmt.Errorf("decode versions: %w", decodeErr), lookup.ProjectID)
	}
	span.SetAttributes(attribute.Int("versions", len(result)))
	return result, nil
}
