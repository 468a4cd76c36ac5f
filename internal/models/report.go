package models

import "encoding/json"

// Status is the outcome recorded for one identifier in the download report.
type Status string

const (
	StatusNotFound       Status = "not_found"
	StatusNoVersion      Status = "no_version"
	StatusNoFiles        Status = "no_files"
	StatusDownloadFailed Status = "download_failed"
	StatusDownloaded     Status = "downloaded"
)

type ResolvedBy string

const (
	ResolvedBySlug   ResolvedBy = "slug"
	ResolvedBySearch ResolvedBy = "search"
)

// ReportEntry is one line of modrinth_report.json. ClientSide and ServerSide
// are not produced by a plain download run; they are an input contract for
// hand-edited or tool-augmented reports and are read by the server extractor.
type ReportEntry struct {
	Query      string     `json:"query"`
	ID         string     `json:"id,omitempty"`
	Slug       string     `json:"slug,omitempty"`
	Title      string     `json:"title,omitempty"`
	ResolvedBy ResolvedBy `json:"resolvedBy,omitempty"`
	Status     Status     `json:"status"`
	Version    string     `json:"version,omitempty"`
	File       string     `json:"file,omitempty"`
	Error      string     `json:"error,omitempty"`
	ClientSide string     `json:"clientSide,omitempty"`
	ServerSide string     `json:"serverSide,omitempty"`
}

func (entry *ReportEntry) UnmarshalJSON(data []byte) error {
	type plain ReportEntry
	var raw struct {
		plain
		ClientSideSnake string `json:"client_side"`
		ServerSideSnake string `json:"server_side"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*entry = ReportEntry(raw.plain)
	if entry.ClientSide == "" {
		entry.ClientSide = raw.ClientSideSnake
	}
	if entry.ServerSide == "" {
		entry.ServerSide = raw.ServerSideSnake
	}
	return nil
}

func (entry ReportEntry) IsDownloaded() bool {
	return entry.Status == StatusDownloaded
}

func (entry ReportEntry) DisplayName() string {
	switch {
	case entry.Title != "":
		return entry.Title
	case entry.Slug != "":
		return entry.Slug
	default:
		return entry.Query
	}
}

func (entry ReportEntry) Sides() SidePair {
	return SidePair{Client: entry.ClientSide, Server: entry.ServerSide}
}

type Report []ReportEntry

func (report Report) Downloaded() Report {
	downloaded := make(Report, 0, len(report))
	for _, entry := range report {
		if entry.IsDownloaded() {
			downloaded = append(downloaded, entry)
		}
	}
	return downloaded
}

func (report Report) Failures() Report {
	failures := make(Report, 0)
	for _, entry := range report {
		if !entry.IsDownloaded() {
			failures = append(failures, entry)
		}
	}
	return failures
}

func (report Report) HasFailures() bool {
	return len(report.Failures()) > 0
}
