package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/matzehuels/scenegrid/pkg/errors"
	sceneio "github.com/matzehuels/scenegrid/pkg/io"
)

// Parse reads the scene description named by opts. It returns the decoded
// document and the raw bytes, which key the cache.
func Parse(opts Options) (*sceneio.Document, []byte, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, nil, err
	}

	if opts.Path == "" {
		raw := []byte(opts.Source)
		doc, err := sceneio.ReadScene(strings.NewReader(opts.Source), sceneio.Format(opts.Format))
		if err != nil {
			return nil, nil, err
		}
		opts.Logger.Debug("parsed inline scene", "format", opts.Format, "calls", len(doc.Calls))
		return doc, raw, nil
	}

	doc, err := sceneio.ImportScene(opts.Path)
	if err != nil {
		return nil, nil, err
	}
	raw, err := os.ReadFile(opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene file %s", opts.Path)
		}
		return nil, nil, fmt.Errorf("read %s: %w", opts.Path, err)
	}
	opts.Logger.Debug("parsed scene file", "path", opts.Path, "calls", len(doc.Calls))
	return doc, raw, nil
}
