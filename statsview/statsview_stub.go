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

//go:build !statsview
// +build !statsview

// Package statsview is an optional package that will be built only when
// the statsview build constraint is present. This is the stub for builds
// without the constraint.
package statsview

import "io"

const Address = ""

// Launch is a stub. The statsview build constraint is not present.
func Launch(output io.Writer) {
	output.Write([]byte("statsview not built in (rebuild with the statsview build tag)\n"))
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return false
}
