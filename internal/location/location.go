// Package location resolves the relative paths used by the simulator layout
// (input/, input/proc/, output/) against the working directory.
package location

import (
	"path/filepath"

	"github.com/viant/afs/url"
)

// Resolve turns a relative path into an absolute one; URLs with a scheme and
// absolute paths are returned unchanged
func Resolve(location string) string {
	if location == "" || !url.IsRelative(location) {
		return location
	}
	if abs, err := filepath.Abs(location); err == nil {
		return abs
	}
	return location
}
