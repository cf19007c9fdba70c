// Package config provides configuration management for the archgate CLI.
package config

// Provider types understood by the CLI.
const (
	ProviderManifest   = "manifest"
	ProviderGoImports  = "goimports"
	ProviderGoPackages = "gopackages"
	ProviderSnapshot   = "snapshot"
)

// ProviderTypes lists every supported provider type.
var ProviderTypes = []string{ProviderManifest, ProviderGoImports, ProviderGoPackages, ProviderSnapshot}

// ProviderConfig selects and configures the dependency graph provider.
type ProviderConfig struct {
	// Type is one of ProviderTypes.
	Type string `koanf:"type"`
	// Dir is the artifact root for manifest and Go providers.
	Dir string `koanf:"dir"`
	// Manifest is the per-package manifest file name.
	Manifest string `koanf:"manifest"`
	// IncludeTests adds _test.go imports for Go providers.
	IncludeTests bool `koanf:"include_tests"`
	// Snapshot is the snapshot ID used by the snapshot provider ("latest" by default).
	Snapshot string `koanf:"snapshot"`
	// BuildFlags are passed to the gopackages provider.
	BuildFlags []string `koanf:"build_flags"`
}

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot  string         `koanf:"-"`
	PolicyPath   string         `koanf:"policy"`
	Provider     ProviderConfig `koanf:"provider"`
	StatePath    string         `koanf:"state_path"`
	Concurrency  int            `koanf:"concurrency"`
	OutputFormat string         `koanf:"output"`
	Verbose      bool           `koanf:"verbose"`
	Record       bool           `koanf:"record"`
}

// Default configuration values.
const (
	DefaultPolicyFile  = "policy.yaml"
	DefaultStateFile   = ".archgate/state.db"
	DefaultProvider    = ProviderManifest
	DefaultManifest    = "deps.yaml"
	DefaultConcurrency = 4
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// ConfigFileNames are searched, in order, in the project root.
var ConfigFileNames = []string{"archgate.yaml", "archgate.yml"}
