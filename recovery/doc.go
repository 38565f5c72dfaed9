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

// Package recovery replays the embedding batches stored in a checkpoint file
// left behind by an interrupted build.
//
// A Reader works on a private snapshot of the checkpoint, copied to the fixed
// name "recovery" inside the checkpoint directory, so the build may recreate
// the original file while batches are still being replayed. The snapshot is
// deleted once the decoder reports a clean end of stream.
//
// Only one Reader may use a checkpoint directory at a time, and a Reader is
// not safe for concurrent use.
package recovery
