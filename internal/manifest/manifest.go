package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sofia-silvestri/SignalProcessing/internal/paramutil"
	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
	"github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/plugin"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedEngineVersionConstraint is the semver major constraint this
// host supports; manifests declaring a different major are rejected.
const SupportedEngineVersionConstraint = "v1"

// StaticDescriptor describes one static slot a module declares before
// the host assigns concrete values.
type StaticDescriptor struct {
	Tag  string `yaml:"tag"`
	Kind string `yaml:"kind"`
}

// Manifest is the decoded form of a module manifest document.
type Manifest struct {
	SchemaVersion string             `yaml:"schemaVersion"`
	Name          string             `yaml:"name"`
	TypeName      string             `yaml:"typeName"`
	EngineVersion string             `yaml:"engineVersion"`
	Entrypoint    string             `yaml:"entrypoint"`
	Symbol        string             `yaml:"symbol"`
	Statics       []StaticDescriptor `yaml:"statics"`
	FilePath      string             `yaml:"-"`

	// Descriptor holds the optional "descriptor" block's metadata,
	// extracted separately from the strict struct decode above since it
	// is a free-form sub-document (spec §3's "module descriptor" as
	// loaded from YAML, §4.4 expansion item 3). Zero-valued if the
	// manifest declares no descriptor block.
	Descriptor plugin.ModuleDescriptor `yaml:"-"`
}

// Load reads manifestYAML, validates it against the embedded JSON
// schema, strict-decodes it into a Manifest, and gates it on
// EngineVersion's semver major matching SupportedEngineVersionConstraint.
func Load(manifestYAML []byte, filePathHint string) (*Manifest, error) {
	if len(manifestYAML) == 0 {
		return nil, streamprocerrors.NewConfigError("module manifest content cannot be empty", nil)
	}

	if err := ValidateWithSchema(manifestYAML); err != nil {
		return nil, streamprocerrors.NewConfigError(fmt.Sprintf("manifest '%s' failed schema validation", filePathHint), err)
	}

	dec := yaml.NewDecoder(strings.NewReader(string(manifestYAML)))
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, streamprocerrors.NewConfigError(fmt.Sprintf("failed to parse module manifest '%s'", filePathHint), err)
	}
	m.FilePath = filePathHint

	var raw map[string]interface{}
	if err := yaml.Unmarshal(manifestYAML, &raw); err != nil {
		return nil, streamprocerrors.NewConfigError(fmt.Sprintf("failed to parse module manifest '%s' for descriptor extraction", filePathHint), err)
	}
	descriptor, err := extractDescriptor(raw)
	if err != nil {
		return nil, streamprocerrors.NewConfigError(fmt.Sprintf("manifest '%s' has an invalid descriptor block", filePathHint), err)
	}
	m.Descriptor = descriptor

	engineVer := m.EngineVersion
	if !strings.HasPrefix(engineVer, "v") {
		engineVer = "v" + engineVer
	}
	if !semver.IsValid(engineVer) {
		return nil, streamprocerrors.NewConfigError(fmt.Sprintf("manifest '%s' has invalid engineVersion format: '%s'", filePathHint, m.EngineVersion), nil)
	}
	if semver.Major(engineVer) != SupportedEngineVersionConstraint {
		return nil, streamprocerrors.NewConfigError(
			fmt.Sprintf("manifest '%s' engineVersion '%s' is not compatible with host requirement '%s'",
				filePathHint, m.EngineVersion, SupportedEngineVersionConstraint), nil)
	}

	if m.Entrypoint == "" {
		return nil, streamprocerrors.NewConfigError(fmt.Sprintf("manifest '%s' is missing 'entrypoint'", filePathHint), nil)
	}
	if m.Symbol == "" {
		return nil, streamprocerrors.NewConfigError(fmt.Sprintf("manifest '%s' is missing 'symbol'", filePathHint), nil)
	}

	return &m, nil
}

// LoadFromFile reads and loads a manifest from disk, resolving
// Entrypoint relative to the manifest's own directory.
func LoadFromFile(filePath string) (*Manifest, error) {
	if filePath == "" {
		return nil, streamprocerrors.NewConfigError("module manifest file path cannot be empty", nil)
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, streamprocerrors.NewConfigError(fmt.Sprintf("failed to get absolute path for '%s'", filePath), err)
	}
	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, streamprocerrors.NewConfigError(fmt.Sprintf("failed to read module manifest file '%s'", absPath), err)
	}
	m, err := Load(raw, absPath)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(m.Entrypoint) {
		m.Entrypoint = filepath.Join(filepath.Dir(absPath), m.Entrypoint)
	}
	return m, nil
}

// extractDescriptor pulls the optional "descriptor" sub-document out of
// raw using paramutil, the same map[string]interface{}-extraction idiom
// the teacher uses for free-form task params. The descriptor's Name is
// not set, by this function or by Load; the module name is the
// manifest's own top-level Name field.
func extractDescriptor(raw map[string]interface{}) (plugin.ModuleDescriptor, error) {
	var desc plugin.ModuleDescriptor

	descRaw, ok, err := paramutil.GetOptionalMap(raw, "descriptor")
	if err != nil {
		return desc, err
	}
	if !ok {
		return desc, nil
	}

	if desc.Description, _, err = paramutil.GetOptionalString(descRaw, "description"); err != nil {
		return desc, err
	}
	if desc.Authors, _, err = paramutil.GetOptionalString(descRaw, "authors"); err != nil {
		return desc, err
	}
	if desc.ReleaseDate, _, err = paramutil.GetOptionalString(descRaw, "releaseDate"); err != nil {
		return desc, err
	}
	if desc.Dependencies, _, err = paramutil.GetOptionalStringSlice(descRaw, "dependencies"); err != nil {
		return desc, err
	}
	if desc.Provides, _, err = paramutil.GetOptionalStringSlice(descRaw, "provides"); err != nil {
		return desc, err
	}

	versionRaw, ok, err := paramutil.GetOptionalMap(descRaw, "version")
	if err != nil {
		return desc, err
	}
	if ok {
		if desc.Version.Major, _, err = paramutil.GetOptionalInt(versionRaw, "major"); err != nil {
			return desc, err
		}
		if desc.Version.Minor, _, err = paramutil.GetOptionalInt(versionRaw, "minor"); err != nil {
			return desc, err
		}
		if desc.Version.Build, _, err = paramutil.GetOptionalInt(versionRaw, "build"); err != nil {
			return desc, err
		}
	}

	return desc, nil
}

// ValidateDependencies checks every "name@vMAJOR.MINOR.BUILD" entry the
// manifest's descriptor declares against loaded, the versions of modules
// already registered with the host (spec §4.4 expansion item 3). A
// dependency is satisfied when the loaded module's major version matches
// exactly and its (minor, build) is greater than or equal to what was
// requested.
func (m *Manifest) ValidateDependencies(loaded map[string]plugin.Version) error {
	for _, dep := range m.Descriptor.Dependencies {
		name, want, err := parseDependency(dep)
		if err != nil {
			return streamprocerrors.NewConfigError(
				fmt.Sprintf("manifest '%s' has an invalid dependency declaration '%s'", m.FilePath, dep), err)
		}

		got, ok := loaded[name]
		if !ok {
			return streamprocerrors.NewConfigError(
				fmt.Sprintf("manifest '%s' depends on module '%s', which is not loaded", m.FilePath, name), nil)
		}

		if got.Major != want.Major || got.Minor < want.Minor || (got.Minor == want.Minor && got.Build < want.Build) {
			return streamprocerrors.NewConfigError(
				fmt.Sprintf("manifest '%s' requires '%s' >= v%d.%d.%d, loaded version is v%d.%d.%d",
					m.FilePath, name, want.Major, want.Minor, want.Build, got.Major, got.Minor, got.Build), nil)
		}
	}
	return nil
}

// parseDependency splits a "name@vMAJOR.MINOR.BUILD" dependency string
// into its module name and required Version using golang.org/x/mod/semver
// for the version-string validation.
func parseDependency(dep string) (string, plugin.Version, error) {
	parts := strings.SplitN(dep, "@", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", plugin.Version{}, fmt.Errorf("expected 'name@vMAJOR.MINOR.BUILD', got '%s'", dep)
	}

	name, verStr := parts[0], parts[1]
	if !strings.HasPrefix(verStr, "v") {
		verStr = "v" + verStr
	}
	if !semver.IsValid(verStr) {
		return "", plugin.Version{}, fmt.Errorf("invalid semver '%s' in dependency '%s'", parts[1], dep)
	}

	var major, minor, build int
	if _, err := fmt.Sscanf(semver.Canonical(verStr), "v%d.%d.%d", &major, &minor, &build); err != nil {
		return "", plugin.Version{}, fmt.Errorf("could not parse semver components from '%s' in dependency '%s'", parts[1], dep)
	}

	return name, plugin.Version{Major: major, Minor: minor, Build: build}, nil
}
