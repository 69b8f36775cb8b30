package discovery

import (
	"fmt"

	"mt/internal/domain"
	"mt/internal/naming"
	"mt/internal/registry"
)

// Loader declares the tests of resolved files in a registry
type Loader struct {
	parser *Parser
}

// NewLoader creates a new Loader
func NewLoader(parser *Parser) *Loader {
	return &Loader{parser: parser}
}

// Load scans every file and declares its tests. A duplicate identity within
// a package aborts loading with registry.ErrDuplicateTest.
func (l *Loader) Load(reg *registry.Registry, files []domain.TestFile) error {
	for _, file := range files {
		decls, err := l.parser.FindDeclarations(file.Path)
		if err != nil {
			return err
		}

		for _, decl := range decls {
			rec := domain.TestRecord{
				Identity:      naming.Identity(decl.Suite, decl.Method),
				Suite:         decl.Suite,
				Method:        decl.Method,
				Description:   decl.Description,
				Location:      domain.Location{File: file.RelPath, Line: decl.Line},
				Package:       file.Dir,
				SlowThreshold: decl.SlowThreshold,
				HasThreshold:  decl.HasThreshold,
			}
			if _, err := reg.Declare(rec); err != nil {
				return fmt.Errorf("load %s:%d: %w", file.RelPath, decl.Line, err)
			}
		}
	}
	return nil
}
