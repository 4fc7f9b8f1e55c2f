// Package tenant resolves request hostnames to tenant contexts for
// row-level-security scoping. Resolution is a pure table lookup; the
// database-session propagation lives in the postgres adapter.
package tenant
