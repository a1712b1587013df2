// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mapping

import "fmt"

// ❌ MalformedLineError reports a map file line that has no target;source
// separator (or no source after it). Matchable with errors.As.
type MalformedLineError struct {
	Line int    // 1-based line number in the map file
	Text string // the offending line, already trimmed
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("map file line %d: missing %q separator in %q", e.Line, string(Separator), e.Text)
}

// ❌ InvalidTargetError reports a target field that violates the numeric
// naming rules (segment count, digit-only, 2-digit folder, 3-digit file).
type InvalidTargetError struct {
	Line   int    // 1-based line number in the map file
	Target string // the target field as written
	Reason string // which rule was violated
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("map file line %d: invalid target %q: %s", e.Line, e.Target, e.Reason)
}
