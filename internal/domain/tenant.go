package domain

import "github.com/google/uuid"

// SuperAdminTenantID is the sentinel tenant used for localhost, IP and apex
// domain requests, and as the fail-open fallback for unknown subdomains.
const SuperAdminTenantID = "0"

// TenantContext identifies the active tenant for a single request. It is
// threaded explicitly through every tenant-scoped data-access call; there is
// no ambient/global tenant state.
type TenantContext struct {
	TenantID          string    `json:"tenant_id"`
	OrganizationID    uuid.UUID `json:"organization_id,omitempty"`
	OrganizationSlug  string    `json:"organization_slug,omitempty"`
	OrganizationName  string    `json:"organization_name,omitempty"`
	OrganizationColor string    `json:"organization_color,omitempty"`
}

// SuperAdmin returns the sentinel context with no organization attached.
func SuperAdmin() TenantContext {
	return TenantContext{TenantID: SuperAdminTenantID}
}

// IsSuperAdmin reports whether this context carries the sentinel tenant.
func (tc TenantContext) IsSuperAdmin() bool {
	return tc.TenantID == SuperAdminTenantID
}
