package config

// Config represents the complete cortex configuration.
// It can be loaded from .cortex/config.yml with environment variable overrides.
type Config struct {
	Roots     []string        `yaml:"roots" mapstructure:"roots"`
	Scanner   ScannerConfig   `yaml:"scanner" mapstructure:"scanner"`
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
}

// ScannerConfig controls which files the Scanner will consider. IgnoreDirs is
// loaded but not passed to the Scanner, which always skips its own fixed set
// of directory names; the Watcher reads none of these settings.
type ScannerConfig struct {
	MaxFileSize        int64    `yaml:"max_file_size" mapstructure:"max_file_size"` // bytes
	SupportedExtensions []string `yaml:"supported_extensions" mapstructure:"supported_extensions"`
	IgnoreDirs          []string `yaml:"ignore_dirs" mapstructure:"ignore_dirs"`
	FollowSymlinks      bool     `yaml:"follow_symlinks" mapstructure:"follow_symlinks"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"`     // "onnx" or "mock"
	Model      string `yaml:"model" mapstructure:"model"`           // e.g., "all-MiniLM-L6-v2"
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"` // embedding vector dimensions
}

// ExportConfig controls chunking and default output behavior for the two
// export formats.
type ExportConfig struct {
	ChunkWords int    `yaml:"chunk_words" mapstructure:"chunk_words"` // target words per chunk
	OutputDir  string `yaml:"output_dir" mapstructure:"output_dir"`   // default export destination
}

// StorageConfig controls where the SQLite database lives.
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Roots: []string{},
		Scanner: ScannerConfig{
			MaxFileSize: 100 * 1024 * 1024,
			SupportedExtensions: []string{
				"txt", "md", "pdf", "docx", "doc", "rtf",
				"rs", "js", "ts", "py", "java", "c", "cpp", "h", "hpp",
				"json", "yaml", "yml", "toml", "xml", "html", "css",
			},
			IgnoreDirs:     []string{"node_modules", "target", "dist", "build", ".git", ".svn"},
			FollowSymlinks: false,
		},
		Embedding: EmbeddingConfig{
			Provider:   "onnx",
			Model:      "all-MiniLM-L6-v2",
			Dimensions: 384,
		},
		Export: ExportConfig{
			ChunkWords: 375,
			OutputDir:  "",
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
	}
}
