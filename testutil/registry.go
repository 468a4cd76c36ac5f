package testutil

import (
	"crypto/sha1"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// RegistryFile is a downloadable artifact served by the fake registry.
// Status overrides the download response code when non-zero.
type RegistryFile struct {
	FileName string
	Primary  bool
	Content  []byte
	Status   int
}

type RegistryVersion struct {
	ID            string
	VersionNumber string
	DatePublished time.Time
	Loaders       []string
	GameVersions  []string
	Files         []RegistryFile
}

type RegistryProject struct {
	ID         string
	Slug       string
	Title      string
	ClientSide string
	ServerSide string
	Versions   []RegistryVersion
}

// Registry is an httptest server that speaks the subset of the Modrinth v2
// API used by mrpb: project lookup, search, version listing and file download.
type Registry struct {
	Server *httptest.Server

	mu       sync.Mutex
	projects []RegistryProject
	failures map[string]int
	requests []string
}

func NewRegistry(t testing.TB, projects ...RegistryProject) *Registry {
	t.Helper()

	registry := &Registry{
		projects: projects,
		failures: map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/project/{id}", registry.handleProject)
	mux.HandleFunc("GET /v2/project/{id}/version", registry.handleVersions)
	mux.HandleFunc("GET /v2/search", registry.handleSearch)
	mux.HandleFunc("GET /data/{project}/versions/{version}/{file}", registry.handleDownload)

	registry.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		registry.mu.Lock()
		registry.requests = append(registry.requests, r.URL.Path)
		status, failing := registry.failures[r.URL.Path]
		registry.mu.Unlock()

		if failing {
			w.WriteHeader(status)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(registry.Server.Close)

	return registry
}

// Doer routes every request, whatever its host, to the fake registry.
func (registry *Registry) Doer() *HostRewriteDoer {
	return ServerDoer(registry.Server)
}

// FailPath makes every request to path answer with status.
func (registry *Registry) FailPath(path string, status int) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.failures[path] = status
}

func (registry *Registry) Requests() []string {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return append([]string(nil), registry.requests...)
}

// FileURL is the download URL advertised for a file.
func FileURL(projectID string, versionID string, fileName string) string {
	return fmt.Sprintf("https://cdn.modrinth.com/data/%s/versions/%s/%s", projectID, versionID, fileName)
}

func Sha1Hex(content []byte) string {
	sum := sha1.Sum(content)
	return hex.EncodeToString(sum[:])
}

func Sha512Hex(content []byte) string {
	sum := sha512.Sum512(content)
	return hex.EncodeToString(sum[:])
}

func (registry *Registry) findProject(idOrSlug string) (RegistryProject, bool) {
	for _, project := range registry.projects {
		if project.ID == idOrSlug || project.Slug == idOrSlug {
			return project, true
		}
	}
	return RegistryProject{}, false
}

func (registry *Registry) handleProject(w http.ResponseWriter, r *http.Request) {
	project, ok := registry.findProject(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "description": "the requested route does not exist"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":           project.ID,
		"slug":         project.Slug,
		"title":        project.Title,
		"client_side":  project.ClientSide,
		"server_side":  project.ServerSide,
		"project_type": "mod",
		"status":       "approved",
	})
}

func (registry *Registry) handleVersions(w http.ResponseWriter, r *http.Request) {
	project, ok := registry.findProject(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
		return
	}

	loaders, err := decodeArrayParam(r, "loaders")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	gameVersions, err := decodeArrayParam(r, "game_versions")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	out := make([]map[string]any, 0, len(project.Versions))
	for _, version := range project.Versions {
		if !matchesAny(version.Loaders, loaders) || !matchesAny(version.GameVersions, gameVersions) {
			continue
		}
		files := make([]map[string]any, 0, len(version.Files))
		for _, file := range version.Files {
			files = append(files, map[string]any{
				"filename": file.FileName,
				"primary":  file.Primary,
				"size":     len(file.Content),
				"url":      FileURL(project.ID, version.ID, file.FileName),
				"hashes": map[string]string{
					"sha1":   Sha1Hex(file.Content),
					"sha512": Sha512Hex(file.Content),
				},
			})
		}
		out = append(out, map[string]any{
			"id":             version.ID,
			"project_id":     project.ID,
			"version_number": version.VersionNumber,
			"version_type":   "release",
			"date_published": version.DatePublished.UTC().Format(time.RFC3339),
			"loaders":        version.Loaders,
			"game_versions":  version.GameVersions,
			"files":          files,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (registry *Registry) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
	limit := len(registry.projects)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed < limit {
			limit = parsed
		}
	}

	hits := make([]map[string]any, 0)
	for _, project := range registry.projects {
		if len(hits) >= limit {
			break
		}
		if query == "" || !strings.Contains(strings.ToLower(project.Title), query) {
			continue
		}
		hits = append(hits, map[string]any{
			"project_id":   project.ID,
			"slug":         project.Slug,
			"title":        project.Title,
			"client_side":  project.ClientSide,
			"server_side":  project.ServerSide,
			"project_type": "mod",
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"hits":       hits,
		"offset":     0,
		"limit":      limit,
		"total_hits": len(hits),
	})
}

func (registry *Registry) handleDownload(w http.ResponseWriter, r *http.Request) {
	project, ok := registry.findProject(r.PathValue("project"))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	for _, version := range project.Versions {
		if version.ID != r.PathValue("version") {
			continue
		}
		for _, file := range version.Files {
			if file.FileName != r.PathValue("file") {
				continue
			}
			if file.Status != 0 {
				w.WriteHeader(file.Status)
				return
			}
			w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(file.Content)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func decodeArrayParam(r *http.Request, name string) ([]string, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return values, nil
}

func matchesAny(available []string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, candidate := range wanted {
		if slices.Contains(available, candidate) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
