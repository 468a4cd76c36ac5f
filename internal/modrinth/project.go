package modrinth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/modrinth-pack-builder/internal/globalerrors"
	"github.com/meza/modrinth-pack-builder/internal/httpclient"
	"github.com/meza/modrinth-pack-builder/internal/models"
	"github.com/meza/modrinth-pack-builder/internal/perf"
)

type ProjectStatus string
type ProjectType string

const (
	Approved ProjectStatus = "approved"
	Archived ProjectStatus = "archived"
)

const (
	Mod          ProjectType = "mod"
	Modpack      ProjectType = "modpack"
	ResourcePack ProjectType = "resourcepack"
	Datapack     ProjectType = "datapack"
	Shader       ProjectType = "shader"
)

type Project struct {
	ID           string          `json:"id"`
	Slug         string          `json:"slug"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	ClientSide   string          `json:"client_side"`
	ServerSide   string          `json:"server_side"`
	Status       ProjectStatus   `json:"status"`
	Type         ProjectType     `json:"project_type"`
	GameVersions []string        `json:"game_versions"`
	Loaders      []models.Loader `json:"loaders"`
}

// Sides returns the project's declared client/server requirements.
func (project Project) Sides() models.SidePair {
	return models.SidePair{Client: project.ClientSide, Server: project.ServerSide}
}

// GetProject fetches a project by slug or id. A 404 is reported as
// *globalerrors.ProjectNotFoundError so callers can fall back to search.
func GetProject(ctx context.Context, idOrSlug string, client httpclient.Doer) (project *Project, err error) {
	ctx, span := perf.StartSpan(ctx, "api.modrinth.project.get", perf.WithAttributes(attribute.String("project_id", idOrSlug)))
	defer func() {
		span.RecordError(err)
		span.End()
	}()

	endpoint := fmt.Sprintf("%s/v2/project/%s", GetBaseURL(), url.PathEscape(idOrSlug))
	request, err := newRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, globalerrors.ProjectAPIErrorWrap(err, idOrSlug)
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, globalerrors.ProjectAPIErrorWrap(httpclient.WrapTimeoutError(err), idOrSlug)
	}
	defer closeBody(response.Body, &err)

	if response.StatusCode == http.StatusNotFound {
		return nil, &globalerrors.ProjectNotFoundError{ProjectID: idOrSlug}
	}

	if response.StatusCode != http.StatusOK {
		return nil, globalerrors.ProjectAPIErrorWrap(errors.Errorf("unexpected status code: %d", response.StatusCode), idOrSlug)
	}

	result := &Project{}
	if decodeErr := json.NewDecoder(response.Body).Decode(result); decodeErr != nil {
		return nil, globalerrors.ProjectAPIErrorWrap(fmt.Errorf("decode project: %w", decodeErr), idOrSlug)
	}
	return result, nil
}
