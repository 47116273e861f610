package diagnose

import "fmt"

// MaxTenantLength bounds tenant names accepted at the CLI and HTTP boundaries
const MaxTenantLength = 64

// ValidTenant reports whether tenant is safe to place in a chown argument:
// letters, digits, hyphens and underscores only. The empty tenant is valid.
func ValidTenant(tenant string) bool {
	if len(tenant) > MaxTenantLength {
		return false
	}
	for _, char := range tenant {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '-' ||
			char == '_') {
			return false
		}
	}
	return true
}

// CheckTenant returns an error naming the tenant when ValidTenant rejects it
func CheckTenant(tenant string) error {
	if !ValidTenant(tenant) {
		return fmt.Errorf("invalid tenant %q: use at most %d letters, digits, '-' or '_'", tenant, MaxTenantLength)
	}
	return nil
}
