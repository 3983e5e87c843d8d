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

// Package curated provides the error type used throughout the project. A
// curated error keeps the format pattern it was created with, which means
// errors can be compared against the pattern rather than against the fully
// realised message. Packages declare their failure modes as exported pattern
// constants and callers test for them with the Is() and Has() functions.
//
// For example:
//
//	if err := b.Read(addr); curated.Is(err, bus.AddressError) {
//		...
//	}
//
// Patterns compose. A curated error used as a value in another curated error
// remains visible to the Has() function, giving a cheap way of testing for a
// failure mode anywhere in an error chain.
package curated
