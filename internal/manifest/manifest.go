package manifest

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/extbind/internal/ctxlog"
	"github.com/vk/extbind/internal/fsutil"
	"github.com/vk/extbind/internal/registry"
	"github.com/vk/extbind/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Function is the declared signature of an exported function.
type Function struct {
	Path        []string
	Params      []cty.Type
	Returns     cty.Type
	Description string
	Source      hcl.Range
}

// Constant is the declared type of an exported constant.
type Constant struct {
	Path        []string
	Type        cty.Type
	Description string
}

// Manifest is the expected export surface of an extension, keyed by the
// "A::B::name" form of each path.
type Manifest struct {
	Namespaces map[string][]string
	Functions  map[string]*Function
	Constants  map[string]*Constant
}

func newManifest() *Manifest {
	return &Manifest{
		Namespaces: make(map[string][]string),
		Functions:  make(map[string]*Function),
		Constants:  make(map[string]*Constant),
	}
}

// FunctionNames returns the declared function paths sorted.
func (m *Manifest) FunctionNames() []string {
	names := make([]string, 0, len(m.Functions))
	for name := range m.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads one or more manifest files. A directory is searched
// recursively for .hcl files.
func Load(ctx context.Context, paths ...string) (*Manifest, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat manifest path %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to walk manifest directory %s: %w", path, err)
		}
		if len(found) == 0 {
			logger.Warn("No .hcl manifest files found in path", "path", path)
		}
		files = append(files, found...)
	}

	parser := hclparse.NewParser()
	m := newManifest()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := m.add(ctx, hclFile.Body, file); err != nil {
			return nil, err
		}
		logger.Debug("Loaded manifest file.", "file", file)
	}

	logger.Info("Manifest loaded.", "files", len(files), "functions", len(m.Functions), "constants", len(m.Constants))
	return m, nil
}

// Parse reads a manifest from memory.
func Parse(ctx context.Context, src []byte, filename string) (*Manifest, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	m := newManifest()
	if err := m.add(ctx, hclFile.Body, filename); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) add(ctx context.Context, body hcl.Body, filename string) error {
	var cfg schema.ManifestConfig
	if diags := gohcl.DecodeBody(body, nil, &cfg); diags.HasErrors() {
		return fmt.Errorf("failed to decode manifest %s: %w", filename, diags)
	}

	for _, ns := range cfg.Namespaces {
		nsPath, err := registry.ParsePath(ns.Path)
		if err != nil {
			return fmt.Errorf("manifest %s: namespace %q: %w", filename, ns.Path, err)
		}
		m.Namespaces[registry.JoinPath(nsPath)] = nsPath

		for _, fn := range ns.Functions {
			path := append(append([]string(nil), nsPath...), fn.Name)
			key := registry.JoinPath(path)
			if !registry.ValidName(fn.Name) {
				return fmt.Errorf("manifest %s: function %q: %w", filename, key, registry.ErrInvalidName)
			}
			if _, exists := m.Functions[key]; exists {
				return fmt.Errorf("manifest %s: function %q declared more than once", filename, key)
			}

			params, err := paramTypes(ctx, fn.Params)
			if err != nil {
				return fmt.Errorf("manifest %s: function %q: %w", filename, key, err)
			}
			returns, err := typeExprToCtyType(ctx, fn.Returns)
			if err != nil {
				return fmt.Errorf("manifest %s: function %q returns: %w", filename, key, err)
			}

			src := hcl.Range{Filename: filename}
			if !isMissing(fn.Params) {
				src = fn.Params.Range()
			}
			m.Functions[key] = &Function{
				Path:        path,
				Params:      params,
				Returns:     returns,
				Description: fn.Description,
				Source:      src,
			}
		}

		for _, c := range ns.Constants {
			path := append(append([]string(nil), nsPath...), c.Name)
			key := registry.JoinPath(path)
			if !registry.ValidName(c.Name) {
				return fmt.Errorf("manifest %s: constant %q: %w", filename, key, registry.ErrInvalidName)
			}
			if _, exists := m.Constants[key]; exists {
				return fmt.Errorf("manifest %s: constant %q declared more than once", filename, key)
			}

			ty, err := typeExprToCtyType(ctx, c.Type)
			if err != nil {
				return fmt.Errorf("manifest %s: constant %q: %w", filename, key, err)
			}
			m.Constants[key] = &Constant{Path: path, Type: ty, Description: c.Description}
		}
	}
	return nil
}
