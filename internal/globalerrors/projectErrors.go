// Package globalerrors defines registry error types shared by every command.
package globalerrors

import (
	"fmt"
)

type ProjectNotFoundError struct {
	ProjectID string
}

func (notFound *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("Project not found on Modrinth: %s", notFound.ProjectID)
}

func (notFound *ProjectNotFoundError) Is(target error) bool {
	other, ok := target.(*ProjectNotFoundError)
	if !ok {
		return false
	}
	return notFound.ProjectID == other.ProjectID
}

type ProjectAPIError struct {
	ProjectID string
	Err       error
}

func (apiErr *ProjectAPIError) Error() string {
	if apiErr.Err == nil {
		return fmt.Sprintf("Project cannot be fetched due to an api error on Modrinth: %s", apiErr.ProjectID)
	}
	return fmt.Sprintf("Project cannot be fetched due to an api error on Modrinth: %s: %v", apiErr.ProjectID, apiErr.Err)
}

func (apiErr *ProjectAPIError) Is(target error) bool {
	other, ok := target.(*ProjectAPIError)
	if !ok {
		return false
	}
	return apiErr.ProjectID == other.ProjectID
}

func (apiErr *ProjectAPIError) Unwrap() error {
	return apiErr.Err
}

func ProjectAPIErrorWrap(err error, projectID string) error {
	return &ProjectAPIError{
		ProjectID: projectID,
		Err:       err,
	}
}
