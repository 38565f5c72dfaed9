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

package build

import (
	"fmt"
	"runtime"
	"time"

	"github.com/poiesic/vecspool/checkpoint"
)

// Config holds configuration for an index build.
type Config struct {
	// CheckpointDir holds the checkpoint file and the recovery snapshot
	CheckpointDir string

	// BatchSize is the number of documents per batch and per checkpoint frame
	BatchSize int

	// Concurrency is the number of sub-batches embedded at once
	Concurrency int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for failed embedding calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Compression is applied to checkpoint frames
	Compression checkpoint.Compression

	// SyncCheckpoint fsyncs the checkpoint after every batch
	SyncCheckpoint bool

	// KeepCheckpoint leaves the checkpoint file in place after a successful build
	KeepCheckpoint bool

	// TolerateDamagedCheckpoint treats a checkpoint that ends mid-batch or
	// holds a corrupt frame as exhausted at that point instead of failing
	// the build
	TolerateDamagedCheckpoint bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		CheckpointDir:             "checkpoints",
		BatchSize:                 DefaultBatchSize,
		Concurrency:               max(runtime.NumCPU()/2, 1),
		ReportInterval:            100,
		MaxRetries:                3,
		RetryDelay:                1 * time.Second,
		Compression:               checkpoint.CompressionLZ4,
		TolerateDamagedCheckpoint: true,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.CheckpointDir == "" {
		return ErrCheckpointDirRequired
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidConfig, c.BatchSize)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidConfig, c.Concurrency)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInvalidMaxAttempts)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay must not be negative", ErrInvalidConfig)
	}
	return nil
}
