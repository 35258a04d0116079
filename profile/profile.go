// Package profile loads named device measurements from YAML or TOML files.
package profile

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/papyrus-scale/breakpoint"
	"github.com/ByLCY/papyrus-scale/scale"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Format is a profile file encoding.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return "", fmt.Errorf("不支持的设备配置格式: %s", path)
}

// Profile is one named host measurement with optional configure overrides.
type Profile struct {
	Name             string           `yaml:"name" toml:"name"`
	Description      string           `yaml:"description,omitempty" toml:"description,omitempty"`
	Width            float64          `yaml:"width" toml:"width"`
	Height           float64          `yaml:"height" toml:"height"`
	DevicePixelRatio float64          `yaml:"devicePixelRatio" toml:"devicePixelRatio"`
	TextScale        float64          `yaml:"textScale,omitempty" toml:"textScale,omitempty"`
	Base             *breakpoint.Size `yaml:"base,omitempty" toml:"base,omitempty"`
	SystemTextScale  *bool            `yaml:"systemTextScale,omitempty" toml:"systemTextScale,omitempty"`
}

// Measurement returns the host measurement of p.
func (p Profile) Measurement() scale.Measurement {
	return scale.Measurement{
		Width:            p.Width,
		Height:           p.Height,
		DevicePixelRatio: p.DevicePixelRatio,
		TextScale:        p.TextScale,
	}
}

// ConfigureOptions returns the overrides p carries.
func (p Profile) ConfigureOptions() []scale.ConfigureOption {
	var opts []scale.ConfigureOption
	if p.Base != nil {
		opts = append(opts, scale.WithBaseSize(*p.Base))
	}
	if p.SystemTextScale != nil {
		opts = append(opts, scale.WithSystemTextScale(*p.SystemTextScale))
	}
	return opts
}

// Set is a collection of profiles keyed by name.
type Set struct {
	profiles map[string]Profile
}

type document struct {
	Profiles []Profile `yaml:"profiles" toml:"profiles"`
}

// Parse decodes a profile document.
func Parse(data []byte, format Format) (*Set, error) {
	var doc document
	switch format {
	case YAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("解析 YAML 设备配置失败: %w", err)
		}
	case TOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("解析 TOML 设备配置失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的设备配置格式: %s", format)
	}

	set := &Set{profiles: make(map[string]Profile, len(doc.Profiles))}
	for i, p := range doc.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("第 %d 个设备缺少 name", i+1)
		}
		if _, dup := set.profiles[p.Name]; dup {
			return nil, fmt.Errorf("设备 %s 重复定义", p.Name)
		}
		if p.Width <= 0 || p.Height <= 0 {
			return nil, fmt.Errorf("设备 %s 的宽高必须为正数", p.Name)
		}
		if p.DevicePixelRatio == 0 {
			p.DevicePixelRatio = 1
		}
		set.profiles[p.Name] = p
	}
	return set, nil
}

// Load reads a profile file; the format follows the extension.
func Load(path string) (*Set, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取设备配置 %s 失败: %w", path, err)
	}
	set, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Builtin returns the reference devices shipped with the binary.
func Builtin() *Set {
	set, err := Parse(builtinYAML, YAML)
	if err != nil {
		panic(fmt.Sprintf("内置设备配置无效: %v", err))
	}
	return set
}

// Get returns the profile called name.
func (s *Set) Get(name string) (Profile, error) {
	p, ok := s.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("未知设备 %q（可用: %s）", name, strings.Join(s.Names(), ", "))
	}
	return p, nil
}

// Names lists profile names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Encode writes the set back in the given format, profiles sorted by name.
func (s *Set) Encode(format Format) ([]byte, error) {
	doc := document{Profiles: make([]Profile, 0, len(s.profiles))}
	for _, name := range s.Names() {
		doc.Profiles = append(doc.Profiles, s.profiles[name])
	}
	switch format {
	case YAML:
		return yaml.Marshal(doc)
	case TOML:
		return toml.Marshal(doc)
	}
	return nil, fmt.Errorf("不支持的设备配置格式: %s", format)
}

// Merge returns a new set holding s overlaid by other; profiles in other win on name clashes.
func (s *Set) Merge(other *Set) *Set {
	out := &Set{profiles: make(map[string]Profile, len(s.profiles))}
	for name, p := range s.profiles {
		out.profiles[name] = p
	}
	if other != nil {
		for name, p := range other.profiles {
			out.profiles[name] = p
		}
	}
	return out
}
