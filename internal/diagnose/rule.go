package diagnose

import (
	"fmt"
	"strings"
)

// RepairRule detects one failure signature and generates its remediation script.
// Generate is only called after Matches returned true for the same input.
// The tenant is empty when no tenant scoping applies.
type RepairRule interface {
	// Name identifies the rule in logs and metrics
	Name() string

	// Matches reports whether the log carries this rule's signature
	Matches(log, tenant string) bool

	// Generate returns a shell script, or a comment-only script when the
	// needed path could not be extracted
	Generate(log, tenant string) string
}

const (
	permissionDeniedPhrase = "Permission denied"
	permissionErrorPhrase  = "PermissionError"
	missingPathPhrase      = "No such file or directory"
)

func extractionFailed(phrase string) string {
	return fmt.Sprintf("# Error: Could not extract a valid path from the '%s' message.", phrase)
}

// PermissionDenied repairs "Permission denied" failures by normalising the
// mode of the offending path, and for tenants also resetting ownership.
type PermissionDenied struct{}

func (PermissionDenied) Name() string { return "permission_denied" }

func (PermissionDenied) Matches(log, _ string) bool {
	return strings.Contains(log, permissionDeniedPhrase) || strings.Contains(log, permissionErrorPhrase)
}

func (PermissionDenied) Generate(log, tenant string) string {
	path, ok := ExtractPath(log)
	if !ok {
		return extractionFailed(permissionDeniedPhrase)
	}

	lines := []string{fmt.Sprintf("# Repairing permission issue for path: %s", path)}
	if tenant != "" {
		lines = append(lines, fmt.Sprintf("chown -R %s_user:%s_group %s", tenant, tenant, path))
	}
	lines = append(lines, fmt.Sprintf("chmod -R 755 %s", path))

	return strings.Join(lines, "\n")
}

// MissingDirectory repairs "No such file or directory" failures by recreating
// the directory that should contain the missing file.
type MissingDirectory struct{}

func (MissingDirectory) Name() string { return "missing_directory" }

func (MissingDirectory) Matches(log, _ string) bool {
	return strings.Contains(log, missingPathPhrase)
}

func (MissingDirectory) Generate(log, _ string) string {
	path, ok := ExtractPath(log)
	if !ok {
		return extractionFailed(missingPathPhrase)
	}

	// The failing access names a file; the structure to recreate is its parent
	return fmt.Sprintf("# Creating missing directory structure\nmkdir -p %s", parentDir(path))
}
