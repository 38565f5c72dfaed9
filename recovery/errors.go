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

package recovery

import "errors"

var (
	// ErrDecoderRequired is returned when New is called without a decoder.
	ErrDecoderRequired = errors.New("decoder required")

	// ErrSnapshotIsSource is returned when the checkpoint and the recovery
	// snapshot are the same file.
	ErrSnapshotIsSource = errors.New("checkpoint is the recovery snapshot")
)
