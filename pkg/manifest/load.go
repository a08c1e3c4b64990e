package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"
)

// Load reads the manifest of the project in the given directory. Precedence
// from lowest to highest: defaults, manifest file, environment variables.
func Load(dir string) (*Manifest, error) {
	k := koanf.New(".")

	err := k.Load(structs.Provider(Default(), "koanf"), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load manifest defaults")
	}

	err = loadFile(k, filepath.Join(dir, Filename))
	if err != nil {
		return nil, err
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, EnvPrefix)
			return transformEnvKey(key), value
		},
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load environment overrides")
	}

	var m Manifest
	err = k.UnmarshalWithConf("", &m, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &m,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal manifest")
	}

	err = validator.New().Struct(&m)
	if err != nil {
		return nil, errors.Wrap(err, "manifest validation failed")
	}

	return &m, nil
}

// loadFile merges the manifest file into the koanf instance. Only keys
// present in the file override the defaults; a missing file is fine.
func loadFile(k *koanf.Koanf, path string) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to read manifest")
	}

	data := map[string]any{}
	err = yaml.Unmarshal(raw, &data)
	if err != nil {
		return errors.Wrap(err, "failed to parse manifest")
	}

	for key, value := range flattenMap("", data) {
		err = k.Set(key, value)
		if err != nil {
			return errors.Wrapf(err, "failed to set manifest key %s", key)
		}
	}

	return nil
}

// flattenMap converts a nested map into dot-notation keys, so setting single
// keys preserves defaults for the untouched siblings.
func flattenMap(prefix string, m map[string]any) map[string]any {
	result := make(map[string]any)

	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		if nested, ok := v.(map[string]any); ok {
			for fk, fv := range flattenMap(key, nested) {
				result[fk] = fv
			}
		} else {
			result[key] = v
		}
	}

	return result
}

// transformEnvKey converts an environment variable name without prefix into
// a koanf path. The first underscore separates the section, the remaining
// ones stay part of the field name: RELEASE_PROXY becomes release.proxy and
// BUILD_CROSS_COMPILE becomes build.cross_compile.
func transformEnvKey(s string) string {
	s = strings.ToLower(s)

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_'
	})

	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}

	return parts[0] + "." + strings.Join(parts[1:], "_")
}
