// Package version carries the build version and the catalog schema version rules.
package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Current is the running build, set with -ldflags "-X .../version.Current=v1.2.3".
var Current = "dev"

// CatalogSchema is the catalog document version this build writes. Documents with
// the same major version are readable.
const CatalogSchema = "1.0.0"

// Normalize ensures version string has "v" prefix for semver compatibility.
// Examples: "1.2.3" -> "v1.2.3", "v1.2.3" -> "v1.2.3"
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// CheckCatalogVersion accepts an empty version (pre-versioned documents) or any
// valid semver sharing CatalogSchema's major version.
func CheckCatalogVersion(v string) error {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	got := Normalize(v)
	if !semver.IsValid(got) {
		return fmt.Errorf("invalid catalog version %q", v)
	}
	want := Normalize(CatalogSchema)
	if semver.Major(got) != semver.Major(want) {
		return fmt.Errorf("unsupported catalog version %s, this build reads %s.x", got, semver.Major(want))
	}
	return nil
}

// IsNewerCatalog reports whether v was written by a newer minor or patch release
// than this build.
func IsNewerCatalog(v string) bool {
	got := Normalize(v)
	return semver.IsValid(got) && semver.Compare(got, Normalize(CatalogSchema)) > 0
}
