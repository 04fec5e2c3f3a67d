package artifact

import "fmt"

// NotFoundError indicates the remote confirmed an artifact or metadata does
// not exist, or a cached absence that policy forbids retrying.
type NotFoundError struct {
	Coordinates string // human-readable coordinates ("group:artifact:version")
	Repository  string // repository id, empty when cached without a remote
	Cached      bool   // true when synthesized from a cached not-found record
}

func (e *NotFoundError) Error() string {
	if e.Cached {
		return fmt.Sprintf("%s not found in %s (cached)", e.Coordinates, e.Repository)
	}
	return fmt.Sprintf("%s not found in %s", e.Coordinates, e.Repository)
}

// TransferError indicates a transport failure while fetching or publishing
// an artifact or metadata item.
type TransferError struct {
	Coordinates string
	Repository  string
	Cached      bool
	Cause       error
}

func (e *TransferError) Error() string {
	prefix := fmt.Sprintf("failed to transfer %s via %s", e.Coordinates, e.Repository)
	if e.Cached {
		prefix += " (cached)"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.Cause)
	}
	return prefix
}

func (e *TransferError) Unwrap() error { return e.Cause }

// OfflineError indicates a remote was refused by the offline controller.
type OfflineError struct {
	Repository string
}

func (e *OfflineError) Error() string {
	return fmt.Sprintf("repository %s is offline", e.Repository)
}

// NoConnectorError indicates no connector factory accepted a remote.
type NoConnectorError struct {
	Repository string
}

func (e *NoConnectorError) Error() string {
	return fmt.Sprintf("no repository connector available for %s", e.Repository)
}

// VersionResolutionError wraps a failure from the external VersionResolver.
type VersionResolutionError struct {
	Coordinates string
	Cause       error
}

func (e *VersionResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve version for %s: %v", e.Coordinates, e.Cause)
}

func (e *VersionResolutionError) Unwrap() error { return e.Cause }

// ResolutionError is the batch-level error raised when any request in a
// resolveArtifacts/resolveMetadata batch lacks a final file. It carries the
// per-request exception lists so callers can inspect individual failures.
type ResolutionError struct {
	Kind       string // "artifact" or "metadata"
	Exceptions map[string][]error // coordinates -> exceptions
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s resolution failed for %d item(s)", e.Kind, len(e.Exceptions))
}

// InstallationError wraps an underlying I/O failure during install.
type InstallationError struct {
	Coordinates string
	Cause       error
}

func (e *InstallationError) Error() string {
	return fmt.Sprintf("failed to install %s: %v", e.Coordinates, e.Cause)
}

func (e *InstallationError) Unwrap() error { return e.Cause }

// DeploymentError wraps an underlying failure during deploy.
type DeploymentError struct {
	Coordinates string
	Repository  string
	Cause       error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("failed to deploy %s to %s: %v", e.Coordinates, e.Repository, e.Cause)
}

func (e *DeploymentError) Unwrap() error { return e.Cause }
