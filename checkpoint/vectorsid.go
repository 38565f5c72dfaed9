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

package checkpoint

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/vecspool/ai"
)

// VectorsID derives the checkpoint file name for an embedding configuration.
// Builds that would produce different vectors (another model or host) or
// different batch boundaries (passed in extra) get different identifiers,
// so their checkpoints can share a directory.
func VectorsID(config *ai.Config, extra ...string) string {
	h, _ := blake2b.New(16, nil)
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	write(config.EmbeddingHost)
	write(config.EmbeddingModel)
	for _, s := range extra {
		write(s)
	}

	return hex.EncodeToString(h.Sum(nil))
}
