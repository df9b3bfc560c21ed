package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/pipewright/internal/config"
	"github.com/specialistvlad/pipewright/internal/ctxlog"
	"github.com/specialistvlad/pipewright/internal/fsutil"
	"github.com/specialistvlad/pipewright/internal/result"
	"github.com/specialistvlad/pipewright/internal/schema"
)

// Loader parses HCL pipeline documents into the config model.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a new HCL document loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load reads the document at path (a single .hcl file or a directory of
// them), decodes it, translates it, and validates it. Exactly one pipeline
// block must be present across all files.
func (l *Loader) Load(ctx context.Context, path string) (*config.Document, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := l.resolveFiles(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Pipeline document files resolved.", "count", len(files))

	var pipelines []*schema.Pipeline
	for _, file := range files {
		hclFile, diags := l.parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%w: parsing %s: %v", result.ErrInvalidDocument, file, diags)
		}

		var decoded schema.File
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &decoded); diags.HasErrors() {
			return nil, fmt.Errorf("%w: decoding %s: %v", result.ErrInvalidDocument, file, diags)
		}
		pipelines = append(pipelines, decoded.Pipelines...)
	}

	if len(pipelines) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one pipeline block, found %d", result.ErrInvalidDocument, len(pipelines))
	}

	doc, err := l.translatePipeline(pipelines[0])
	if err != nil {
		return nil, err
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	logger.Debug("Pipeline document loaded and validated.", "pipeline", doc.Name, "jobs", len(doc.Jobs))
	return doc, nil
}

// resolveFiles expands a path into the list of document files to parse.
func (l *Loader) resolveFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", result.ErrInvalidDocument, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("%w: scanning %s: %v", result.ErrInvalidDocument, path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no .hcl files found under %s", result.ErrInvalidDocument, path)
	}
	return files, nil
}

// invalidf wraps a formatted message in the invalid-document error kind.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", result.ErrInvalidDocument, fmt.Sprintf(format, args...))
}

var _ config.Loader = (*Loader)(nil)
