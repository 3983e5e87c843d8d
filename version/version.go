// This file is part of Tracer8.
//
// Tracer8 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Tracer8 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Tracer8.  If not, see <https://www.gnu.org/licenses/>.

// Package version records the release number of the project and any vcs
// information embedded at build time.
package version

import "runtime/debug"

// ApplicationName is the name to use when referring to the application.
const ApplicationName = "Tracer8"

// number is set through the linker by the release process. when empty the
// build did not come from a tagged release.
var number string

// Version returns the version string, the vcs revision and whether this is
// a numbered release. The revision is suffixed with "+dirty" if the source
// had uncommitted changes at build time.
func Version() (string, string, bool) {
	version := number
	revision := "no revision information"

	var vcs bool
	var modified bool

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs":
				vcs = true
			case "vcs.revision":
				if s.Value != "" {
					revision = s.Value
				}
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
	}

	if modified {
		revision += "+dirty"
	}

	if version == "" {
		// "local" means no vcs information at all. this happens with "go run ."
		if vcs {
			version = "unreleased"
		} else {
			version = "local"
		}
	}

	return version, revision, version == number && number != ""
}
