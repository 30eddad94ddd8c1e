package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/scenegrid/pkg/cache"
	"github.com/matzehuels/scenegrid/pkg/core/box"
	"github.com/matzehuels/scenegrid/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"path", Options{Path: "scene.toml"}, false},
		{"inline", Options{Source: "calls: []", Format: "yaml"}, false},
		{"nothing", Options{}, true},
		{"inline without format", Options{Source: "x"}, true},
		{"negative width", Options{Path: "scene.toml", Width: -1}, true},
		{"bad format", Options{Path: "scene.toml", Formats: []string{"gif"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{Path: "scene.toml"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}

	opts = Options{Path: "scene.toml", Formats: []string{"svg", "json", "svg"}}
	opts.SetRenderDefaults()
	if got := strings.Join(opts.Formats, ","); got != "json,svg" {
		t.Errorf("Formats = %s, want json,svg", got)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{GridLines: true, Detailed: true, Scale: 3}

	if got := opts.ArtifactKeyOpts(FormatSVG); !got.GridLines || got.Detailed || got.Scale != 0 {
		t.Errorf("svg key opts = %+v", got)
	}
	if got := opts.ArtifactKeyOpts(FormatPNG); !got.GridLines || got.Scale != 3 {
		t.Errorf("png key opts = %+v", got)
	}
	if got := opts.ArtifactKeyOpts(FormatDOT); got.GridLines || !got.Detailed {
		t.Errorf("dot key opts = %+v", got)
	}
	if got := opts.ArtifactKeyOpts(FormatJSON); got != (cache.ArtifactKeyOpts{Format: FormatJSON}) {
		t.Errorf("json key opts = %+v", got)
	}
}

const inlineScene = `
calls:
  - recipe: lines
    frame: {title: Latency}
    layer: {label: p99, y: [3, 1, 2]}
`

func TestExecuteInline(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	res, err := r.Execute(context.Background(), Options{
		Source:  inlineScene,
		Format:  "yaml",
		Formats: []string{"svg", "json", "dot"},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.Scene == nil {
		t.Fatal("Scene should be set on a fresh build")
	}
	if got := res.Scene.Size(); got != (box.Size{W: 800, H: 600}) {
		t.Errorf("scene size = %v, want default 800x600", got)
	}
	if res.Stats.Calls != 1 || res.Stats.Frames != 1 || res.Stats.Layers != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.CacheInfo.RenderHit {
		t.Error("RenderHit should be false without a cache")
	}
	if res.SceneHash == "" {
		t.Error("SceneHash should be set")
	}

	if !bytes.HasPrefix(res.Artifacts[FormatSVG], []byte("<svg")) {
		t.Errorf("svg artifact = %.40q", res.Artifacts[FormatSVG])
	}
	if !bytes.Contains(res.Artifacts[FormatSVG], []byte("Latency")) {
		t.Error("svg artifact should contain the frame title")
	}
	var layout map[string]any
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &layout); err != nil {
		t.Errorf("json artifact does not decode: %v", err)
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph layout") {
		t.Errorf("dot artifact = %.40q", res.Artifacts[FormatDOT])
	}
}

func TestExecuteFile(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	res, err := r.Execute(context.Background(), Options{
		Path:  filepath.Join("testdata", "dashboard.yaml"),
		Width: 1200,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got := res.Scene.Size(); got != (box.Size{W: 1200, H: 400}) {
		t.Errorf("scene size = %v, want 1200x400", got)
	}
	if res.Stats.Calls != 4 || res.Stats.Frames != 4 || res.Stats.Layers != 5 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if len(res.Artifacts) != 1 {
		t.Errorf("artifacts = %d, want only svg", len(res.Artifacts))
	}
}

func TestExecuteCaches(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()
	ctx := context.Background()
	opts := Options{Path: filepath.Join("testdata", "dashboard.yaml"), Formats: []string{"svg", "json"}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute() error: %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss")
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit")
	}
	if second.Scene != nil {
		t.Error("a cache hit should skip the layout stage")
	}
	if second.SceneHash != first.SceneHash {
		t.Errorf("SceneHash changed: %s != %s", second.SceneHash, first.SceneHash)
	}
	if !bytes.Equal(second.Artifacts[FormatSVG], first.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from rendered svg")
	}

	gridded := opts
	gridded.GridLines = true
	third, err := r.Execute(ctx, gridded)
	if err != nil {
		t.Fatalf("third Execute() error: %v", err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("different render options should miss")
	}

	refreshed := opts
	refreshed.Refresh = true
	fourth, err := r.Execute(ctx, refreshed)
	if err != nil {
		t.Fatalf("fourth Execute() error: %v", err)
	}
	if fourth.CacheInfo.RenderHit || fourth.Scene == nil {
		t.Error("refresh should rebuild the scene")
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{
			name: "missing file",
			opts: Options{Path: filepath.Join(t.TempDir(), "missing.toml")},
			code: errors.ErrCodeFileNotFound,
		},
		{
			name: "unknown recipe",
			opts: Options{Source: "calls: [{recipe: nope}]", Format: "yaml"},
			code: errors.ErrCodeUnknownRecipe,
		},
		{
			name: "bad document",
			opts: Options{Source: "calls: [", Format: "yaml"},
			code: errors.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(ctx, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want code %s", err, tt.code)
			}
		})
	}

	if _, err := r.Execute(ctx, Options{}); err == nil {
		t.Error("Execute() without a scene should fail")
	}
}
