package manifest

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// EnvPrefix marks environment variables that overlay manifest values.
// The remainder of the variable name maps onto a dotted manifest key
// path, with "__" separating nested segments: OFFSETUP_DRY_RUN sets
// dry_run, OFFSETUP_DEPENDENCIES__PLATFORMS__UBUNTU__ARCH sets
// dependencies.platforms.ubuntu.arch.
const EnvPrefix = "OFFSETUP_"

// ConfigError reports a manifest that could not be loaded: the file was
// unreadable, the YAML was malformed, or a merged value could not be
// coerced to its declared type.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Overrides carries the CLI-level settings that take precedence over the
// manifest file and the environment. Nil pointer fields mean the flag was
// not parsed and the lower layers win.
type Overrides struct {
	// Debug, when non-nil, is the parsed value of the --debug flag.
	Debug *bool

	// DryRun, when non-nil, is the parsed value of the --dry-run flag.
	DryRun *bool

	// InstallPriority, when non-nil, overwrites the install_priority of
	// every platform entry under dependencies.platforms.
	InstallPriority []string
}

// Resolve merges the manifest file at path, OFFSETUP_-prefixed variables
// from environ, and CLI overrides into one Manifest. Precedence, lowest
// to highest: file, environment, CLI flags, CLI install-priority list.
//
// Resolve does not validate the result; callers that care about the
// Source invariant must run a Validator over the returned manifest
// before acting on it.
func Resolve(path string, environ []string, ov Overrides) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	overlayEnvironment(raw, environ)

	m, err := decodeTyped(raw)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	if ov.Debug != nil {
		m.Debug = *ov.Debug
	}
	if ov.DryRun != nil {
		m.DryRun = *ov.DryRun
	}

	if ov.InstallPriority != nil {
		overridePriorities(m, ov.InstallPriority)
	}

	return m, nil
}

// overlayEnvironment applies OFFSETUP_ variables onto the raw manifest
// tree. Values are parsed as YAML scalars so "true" and "8080" coerce to
// their natural types.
func overlayEnvironment(raw map[string]interface{}, environ []string) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		keyPath := strings.Split(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "__")

		var parsed interface{}
		if err := yaml.Unmarshal([]byte(value), &parsed); err != nil {
			parsed = value
		}

		log.Debug().Str("key", strings.Join(keyPath, ".")).Msg("applying environment override")
		setPath(raw, keyPath, parsed)
	}
}

// setPath writes value at the given key path, creating intermediate maps
// and replacing non-map intermediates.
func setPath(tree map[string]interface{}, keyPath []string, value interface{}) {
	for _, key := range keyPath[:len(keyPath)-1] {
		next, ok := tree[key].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			tree[key] = next
		}
		tree = next
	}
	tree[keyPath[len(keyPath)-1]] = value
}

// decodeTyped round-trips the merged tree through YAML into the typed
// manifest. Unknown keys are ignored; a value that cannot be coerced to
// its declared type is an error.
func decodeTyped(raw map[string]interface{}) (*Manifest, error) {
	buf, err := yaml.Marshal(raw)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(buf, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// overridePriorities overwrites the install_priority of every platform
// entry with the CLI-supplied list, discarding the file's values.
func overridePriorities(m *Manifest, priorities []string) {
	if m.Dependencies == nil {
		return
	}
	for name, p := range m.Dependencies.Platforms {
		log.Debug().
			Str("platform", name).
			Strs("install_priority", priorities).
			Msg("overriding install priority")
		p.InstallPriority = append([]string(nil), priorities...)
		m.Dependencies.Platforms[name] = p
	}
}
