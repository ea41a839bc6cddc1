// Package admin exposes the RLS auditor over HTTP for operators. Every route
// requires the static admin bearer token; callers without it get a 403 that
// carries no table or policy detail.
package admin
