package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidProvider indicates an unsupported embedding provider
	ErrInvalidProvider = errors.New("invalid embedding provider")

	// ErrInvalidDimensions indicates invalid embedding dimensions
	ErrInvalidDimensions = errors.New("invalid embedding dimensions")

	// ErrEmptyModel indicates missing embedding model
	ErrEmptyModel = errors.New("empty embedding model")

	// ErrInvalidMaxFileSize indicates a non-positive max file size
	ErrInvalidMaxFileSize = errors.New("invalid max file size")

	// ErrInvalidChunkWords indicates a non-positive export chunk size
	ErrInvalidChunkWords = errors.New("invalid export chunk word count")

	// ErrEmptyDBPath indicates a missing storage db_path
	ErrEmptyDBPath = errors.New("empty storage db_path")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateScanner(&cfg.Scanner); err != nil {
		errs = append(errs, err)
	}
	if err := validateEmbedding(&cfg.Embedding); err != nil {
		errs = append(errs, err)
	}
	if err := validateExport(&cfg.Export); err != nil {
		errs = append(errs, err)
	}
	if err := validateStorage(&cfg.Storage); err != nil {
		errs = append(errs, err)
	}

	return joinErrors(errs)
}

func validateScanner(cfg *ScannerConfig) error {
	var errs []error

	if cfg.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: must be positive, got %d", ErrInvalidMaxFileSize, cfg.MaxFileSize))
	}

	return joinErrors(errs)
}

func validateEmbedding(cfg *EmbeddingConfig) error {
	var errs []error

	provider := strings.ToLower(cfg.Provider)
	if provider != "onnx" && provider != "mock" {
		errs = append(errs, fmt.Errorf("%w: must be 'onnx' or 'mock', got '%s'", ErrInvalidProvider, cfg.Provider))
	}

	if strings.TrimSpace(cfg.Model) == "" {
		errs = append(errs, fmt.Errorf("%w: model is required", ErrEmptyModel))
	}

	if cfg.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("%w: dimensions must be positive, got %d", ErrInvalidDimensions, cfg.Dimensions))
	}

	return joinErrors(errs)
}

func validateExport(cfg *ExportConfig) error {
	var errs []error

	if cfg.ChunkWords <= 0 {
		errs = append(errs, fmt.Errorf("%w: chunk_words must be positive, got %d", ErrInvalidChunkWords, cfg.ChunkWords))
	}

	return joinErrors(errs)
}

func validateStorage(cfg *StorageConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.DBPath) == "" {
		errs = append(errs, ErrEmptyDBPath)
	}

	return joinErrors(errs)
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
