package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/scenegrid/pkg/core/recipe"
	"github.com/matzehuels/scenegrid/pkg/errors"
)

// Format is the encoding of a scene description.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor returns the format implied by the extension of path.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported scene file extension %q", filepath.Ext(path))
	}
}

// Document is a scene description: the scene size and the recipe calls that
// fill it, in order.
type Document struct {
	Width  float64 `json:"width,omitempty" toml:"width" yaml:"width"`
	Height float64 `json:"height,omitempty" toml:"height" yaml:"height"`
	Calls  []Call  `json:"calls" toml:"call" yaml:"calls"`
}

// Call is one recipe invocation. The target is inferred from the fields set:
// Into draws into a named frame, At places at a cell (of the named Grid, or
// of the root grid), and neither appends to the scene.
type Call struct {
	Recipe string `json:"recipe" toml:"recipe" yaml:"recipe"`
	// Name registers the frames and grid of the call for later calls. Facets
	// are reachable as "name/row,col" and custom frames as "name/frame".
	Name string `json:"name,omitempty" toml:"name" yaml:"name"`
	Into string `json:"into,omitempty" toml:"into" yaml:"into"`
	Grid string `json:"grid,omitempty" toml:"grid" yaml:"grid"`
	// At is [row, col]; Span is [rows, cols] and defaults to [1, 1].
	At   []int `json:"at,omitempty" toml:"at" yaml:"at"`
	Span []int `json:"span,omitempty" toml:"span" yaml:"span"`

	Scene recipe.Values `json:"scene,omitempty" toml:"scene" yaml:"scene"`
	Frame recipe.Values `json:"frame,omitempty" toml:"frame" yaml:"frame"`
	Layer recipe.Values `json:"layer,omitempty" toml:"layer" yaml:"layer"`
}

// Params returns the partitioned parameters of the call.
func (c Call) Params() recipe.Params {
	return recipe.Params{Scene: c.Scene, Frame: c.Frame, Layer: c.Layer}
}

// ReadScene decodes a scene description from r.
func ReadScene(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var doc Document
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode TOML scene")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode YAML scene")
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode JSON scene")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown scene format %q", format)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ImportScene reads a scene description file. TOML and YAML files are
// accepted; the format follows the extension.
func ImportScene(path string) (*Document, error) {
	if err := errors.ValidateSceneFilename(filepath.Base(path)); err != nil {
		return nil, err
	}
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := ReadScene(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Validate checks the document without running any recipe.
func (d *Document) Validate() error {
	if d.Width < 0 || d.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scene size %vx%v is negative", d.Width, d.Height)
	}
	if len(d.Calls) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scene has no calls")
	}
	names := make(map[string]bool)
	for i, c := range d.Calls {
		if err := errors.ValidateRecipeName(c.Recipe); err != nil {
			return fmt.Errorf("call %d: %w", i+1, err)
		}
		if c.Into != "" && (len(c.At) > 0 || c.Grid != "") {
			return errors.New(errors.ErrCodeAmbiguousTarget, "call %d: into cannot be combined with at or grid", i+1)
		}
		if c.Grid != "" && len(c.At) == 0 {
			return errors.New(errors.ErrCodeInvalidInput, "call %d: grid %q needs a cell in at", i+1, c.Grid)
		}
		if len(c.At) > 0 && len(c.At) != 2 {
			return errors.New(errors.ErrCodeInvalidInput, "call %d: at must be [row, col]", i+1)
		}
		if len(c.Span) > 0 && len(c.Span) != 2 {
			return errors.New(errors.ErrCodeInvalidInput, "call %d: span must be [rows, cols]", i+1)
		}
		for _, ref := range []string{c.Into, c.Grid} {
			base, _, _ := strings.Cut(ref, "/")
			if ref != "" && !names[base] {
				return errors.New(errors.ErrCodeInvalidInput, "call %d: %q is not named by an earlier call", i+1, ref)
			}
		}
		if c.Name != "" {
			if names[c.Name] {
				return errors.New(errors.ErrCodeInvalidInput, "call %d: name %q is used twice", i+1, c.Name)
			}
			names[c.Name] = true
		}
	}
	return nil
}
