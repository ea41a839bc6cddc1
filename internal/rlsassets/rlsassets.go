// Package rlsassets locates the RLS manifest and policy script, preferring
// files on disk and falling back to the copies embedded in the binary.
package rlsassets

import (
	"errors"
	"io/fs"
	"os"

	"github.com/dmitrymomot/tenantkit/db"
	"github.com/dmitrymomot/tenantkit/pkg/rls"
)

// Embedded is reported as the source of assets taken from the binary.
const Embedded = "embedded"

// Manifest loads the table manifest at path. An empty path or a missing file
// selects the embedded manifest; a file that exists but is invalid is an
// error.
func Manifest(path string) (rls.Manifest, string, error) {
	if path != "" {
		m, err := rls.LoadManifest(path)
		if err == nil {
			return m, path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return rls.Manifest{}, path, err
		}
	}

	m, err := rls.ParseManifest(db.TablesManifest())
	return m, Embedded, err
}

// Policies returns the policy script at path with the same fallback rules as
// Manifest.
func Policies(path string) (string, string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", path, errors.Join(rls.ErrPolicyFileRead, err)
		}
	}
	return db.Policies(), Embedded, nil
}
