// Package requestid correlates log records of one HTTP request. The tenant
// middleware logs resolution failures with the request context, so the id
// ties a degraded "no tenant" request back to its database error.
package requestid
