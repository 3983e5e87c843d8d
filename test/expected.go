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

package test

import "testing"

// succeeded converts v to its success/failure sense. Supported types:
//
//	bool  -> the value itself
//	error -> error == nil
//	nil   -> success
func succeeded(t *testing.T, v interface{}) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		return v
	case error:
		return v == nil
	case nil:
		return true
	}

	t.Fatalf("unsupported type (%T) for expectation testing", v)
	return false
}

// ExpectedSuccess tests argument v for the success condition suitable for
// its type (a true bool, a nil error).
func ExpectedSuccess(t *testing.T, v interface{}) bool {
	t.Helper()

	if !succeeded(t, v) {
		t.Errorf("expected success (%T: %v)", v, v)
		return false
	}
	return true
}

// ExpectedFailure tests argument v for the failure condition suitable for
// its type (a false bool, a non-nil error). A nil argument fails the test:
// there is no failure to be seen in it.
func ExpectedFailure(t *testing.T, v interface{}) bool {
	t.Helper()

	if succeeded(t, v) {
		t.Errorf("expected failure (%T)", v)
		return false
	}
	return true
}
