package tenant

import (
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"strings"

	"github.com/ogmaths/clientpulse/internal/domain"
	"github.com/ogmaths/clientpulse/internal/metrics"
)

// ipv4Pattern matches dotted-quad hosts. Requests addressed by raw IP get the
// sentinel tenant, same as localhost.
var ipv4Pattern = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)

// defaultSlugTenants is the built-in subdomain → tenant-id table. Each entry
// can be overridden through configuration at startup.
var defaultSlugTenants = map[string]string{
	"b3":      "1",
	"horizon": "2",
	"unity":   "3",
}

// Resolver maps a request hostname to a TenantContext. The mapping table is
// built once at construction and read-only afterwards, so a single Resolver
// is safe for concurrent use by all request handlers.
type Resolver struct {
	slugTenants map[string]string
	strict      bool
}

// NewResolver builds a resolver from the built-in slug table with the given
// overrides applied (empty override values are ignored). When strict is true,
// an unknown subdomain is rejected instead of falling back to the sentinel
// super-admin tenant.
func NewResolver(overrides map[string]string, strict bool) *Resolver {
	table := make(map[string]string, len(defaultSlugTenants))
	maps.Copy(table, defaultSlugTenants)
	for slug, id := range overrides {
		if id != "" {
			table[strings.ToLower(slug)] = id
		}
	}
	return &Resolver{slugTenants: table, strict: strict}
}

// Resolve maps a hostname (no port) to a tenant context.
//
// localhost, raw IPv4 hosts and apex domains resolve to the sentinel tenant.
// A recognized subdomain resolves to its configured tenant id. An unknown
// subdomain falls back to the sentinel with a logged warning, which grants
// super-admin data scope to unrecognized hosts; strict mode turns it into
// ErrUnknownTenant instead.
func (r *Resolver) Resolve(hostname string) (domain.TenantContext, error) {
	host := strings.ToLower(strings.TrimSpace(hostname))

	if host == "localhost" || ipv4Pattern.MatchString(host) {
		metrics.TenantResolutionsTotal.WithLabelValues("sentinel").Inc()
		return domain.SuperAdmin(), nil
	}

	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		// Apex/main domain: no subdomain to map.
		metrics.TenantResolutionsTotal.WithLabelValues("sentinel").Inc()
		return domain.SuperAdmin(), nil
	}

	slug := labels[0]
	if tenantID, ok := r.slugTenants[slug]; ok {
		metrics.TenantResolutionsTotal.WithLabelValues("matched").Inc()
		return domain.TenantContext{TenantID: tenantID, OrganizationSlug: slug}, nil
	}

	if r.strict {
		metrics.TenantResolutionsTotal.WithLabelValues("rejected").Inc()
		return domain.TenantContext{}, fmt.Errorf("%w: subdomain %q", domain.ErrUnknownTenant, slug)
	}

	slog.Warn("Unknown subdomain, falling back to super-admin tenant", "subdomain", slug, "host", host)
	metrics.TenantResolutionsTotal.WithLabelValues("fallback").Inc()
	return domain.SuperAdmin(), nil
}
