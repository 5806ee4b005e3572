// Copyright 2025 Poiesic Systems
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


package core

// CleanMetadata returns a copy of metadata without entries whose value is nil
// or the empty string. Other zero values (0, false, empty slices) are kept
// because they carry meaning.
func CleanMetadata(metadata map[string]any) map[string]any {
	cleaned := make(map[string]any, len(metadata))
	for k, v := range metadata {
		if isEmptyValue(v) {
			continue
		}
		cleaned[k] = v
	}
	return cleaned
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case *string:
		return val == nil || *val == ""
	}
	return false
}
