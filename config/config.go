package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/achilleasa/orrery/asset"
	"github.com/achilleasa/orrery/renderer"
	"github.com/achilleasa/orrery/types"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// The config file used when no path is specified.
const DefaultFile = "~/.orrery.toml"

// Settings bundles everything a config file can set: the renderer
// configuration and the detail options passed to renderer.New.
type Settings struct {
	Render renderer.Config
	Detail renderer.DetailOptions
}

// The default settings.
func Default() *Settings {
	return &Settings{
		Render: renderer.DefaultConfig(),
		Detail: renderer.DefaultDetailOptions(),
	}
}

// Expand the default config path.
func DefaultPath() (string, error) {
	return homedir.Expand(DefaultFile)
}

// Load settings from a local or remote TOML document. Keys missing from the
// document keep their default values.
func Load(path string) (*Settings, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: could not expand '%s'", path)
	}

	res, err := asset.NewResource(expanded, nil)
	if err != nil {
		return nil, err
	}
	data, err := res.ReadAll()
	if err != nil {
		return nil, err
	}

	s, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config: could not load '%s'", res.Path())
	}
	return s, nil
}

// Save settings to a local file, creating any missing parent directories.
func Save(path string, s *Settings) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return errors.Wrapf(err, "config: could not expand '%s'", path)
	}

	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return errors.Wrapf(err, "config: could not create directory for '%s'", expanded)
	}
	if err = os.WriteFile(expanded, data, 0644); err != nil {
		return errors.Wrapf(err, "config: could not write '%s'", expanded)
	}
	return nil
}

// Decode a TOML document on top of the default settings. Unknown keys are
// rejected.
func Decode(data []byte) (*Settings, error) {
	var doc document
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "config: malformed document")
	}

	s := Default()
	if err := doc.Render.apply(&s.Render); err != nil {
		return nil, err
	}
	doc.Limits.apply(&s.Render)
	doc.Detail.apply(&s.Detail)
	if err := applyColors(doc.Colors, &s.Render.Colors); err != nil {
		return nil, err
	}
	if len(doc.StarColors) != 0 {
		entries := make([]types.TemperatureColor, 0, len(doc.StarColors))
		for index, sc := range doc.StarColors {
			c, err := types.ParseHexColor(sc.Color)
			if err != nil {
				return nil, errors.Wrapf(err, "config: star_colors entry %d", index)
			}
			if !(sc.Kelvin > 0) {
				return nil, errors.Errorf("config: star_colors entry %d: temperature must be positive", index)
			}
			entries = append(entries, types.TemperatureColor{Kelvin: sc.Kelvin, Color: c})
		}
		s.Render.StarColors = types.NewColorTemperatureTable(entries)
	}

	return s, nil
}

// Encode settings as a TOML document listing every key.
func Encode(s *Settings) ([]byte, error) {
	doc := document{
		Render: renderSectionFrom(&s.Render),
		Limits: limitsSectionFrom(&s.Render),
		Detail: detailSectionFrom(&s.Detail),
		Colors: colorsFrom(&s.Render.Colors),
	}
	if s.Render.StarColors != nil {
		for _, e := range s.Render.StarColors.Entries {
			doc.StarColors = append(doc.StarColors, starColor{Kelvin: e.Kelvin, Color: e.Color.Hex()})
		}
	}

	data, err := toml.Marshal(&doc)
	if err != nil {
		return nil, errors.Wrap(err, "config: could not encode settings")
	}
	return data, nil
}
