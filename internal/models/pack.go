package models

const (
	PackFormatVersion = 1
	PackGame          = "minecraft"
)

// PackIndex is the modrinth.index.json document. Field names are part of the
// published .mrpack format.
type PackIndex struct {
	FormatVersion int               `json:"formatVersion"`
	Game          string            `json:"game"`
	VersionID     string            `json:"versionId"`
	Name          string            `json:"name"`
	Summary       string            `json:"summary"`
	Files         []PackFile        `json:"files"`
	Dependencies  map[string]string `json:"dependencies"`
}

type PackFile struct {
	Path      string     `json:"path"`
	Hashes    FileHashes `json:"hashes"`
	Env       *FileEnv   `json:"env,omitempty"`
	Downloads []string   `json:"downloads"`
	FileSize  int64      `json:"fileSize"`
}

type FileHashes struct {
	Sha1   string `json:"sha1"`
	Sha512 string `json:"sha512"`
}

type FileEnv struct {
	Client string `json:"client"`
	Server string `json:"server"`
}

// PackDependencies always pins the game version; the loader is only pinned
// when its version is known.
func PackDependencies(gameVersion string, loader Loader, loaderVersion string) map[string]string {
	dependencies := map[string]string{PackGame: gameVersion}
	if loaderVersion != "" {
		dependencies[string(loader)] = loaderVersion
	}
	return dependencies
}
