// SPDX-License-Identifier: MPL-2.0

package pkgindex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

const pyprojectFile = "pyproject.toml"

type (
	// Workspace is an Index over toolkit source checkouts. Each root is
	// either a project directory holding a pyproject.toml, or a directory
	// whose immediate children are project directories.
	Workspace struct {
		roots []string
	}

	// pyproject is the subset of pyproject.toml the workspace index reads.
	// Both PEP 621 [project] tables and legacy [tool.poetry] tables are
	// understood; [project] wins when both are present.
	pyproject struct {
		Project struct {
			Name         string                       `toml:"name"`
			Version      string                       `toml:"version"`
			Description  string                       `toml:"description"`
			Authors      []pyprojectAuthor            `toml:"authors"`
			URLs         map[string]string            `toml:"urls"`
			Dependencies []string                     `toml:"dependencies"`
			EntryPoints  map[string]map[string]string `toml:"entry-points"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Name         string                       `toml:"name"`
				Version      string                       `toml:"version"`
				Description  string                       `toml:"description"`
				Authors      []string                     `toml:"authors"`
				Homepage     string                       `toml:"homepage"`
				Repository   string                       `toml:"repository"`
				Dependencies map[string]any               `toml:"dependencies"`
				Plugins      map[string]map[string]string `toml:"plugins"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}

	pyprojectAuthor struct {
		Name  string `toml:"name"`
		Email string `toml:"email"`
	}

	// project is one workspace checkout. A checkout whose pyproject.toml
	// could not be loaded keeps the error in err; meta.Name is still set
	// when the name itself was readable.
	project struct {
		dir  string
		meta Metadata
		eps  map[string]map[string]string
		err  error
	}
)

// NewWorkspace creates an index over the given workspace roots.
func NewWorkspace(roots ...string) *Workspace {
	return &Workspace{roots: append([]string(nil), roots...)}
}

// Roots returns the workspace roots.
func (w *Workspace) Roots() []string {
	return append([]string(nil), w.roots...)
}

// Metadata returns the [project] metadata of the named checkout.
func (w *Workspace) Metadata(name string) (*Metadata, error) {
	p, err := w.find(name)
	if err != nil {
		return nil, err
	}
	meta := p.meta
	if root, err := p.locate(name); err == nil {
		meta.SourceRoot = root
	}
	return &meta, nil
}

// Locate resolves the package directory inside the named checkout, looking
// at both flat and src/ layouts.
func (w *Workspace) Locate(name string) (string, error) {
	p, err := w.find(name)
	if err != nil {
		return "", err
	}
	return p.locate(name)
}

// EntryPoints lists entry points declared by every checkout under group.
// Checkouts that failed to load are skipped.
func (w *Workspace) EntryPoints(group string) ([]EntryPoint, error) {
	projects, err := w.projects()
	if err != nil {
		return nil, err
	}

	var out []EntryPoint
	for _, p := range projects {
		if p.err != nil {
			continue
		}
		entries := p.eps[group]
		names := make([]string, 0, len(entries))
		for n := range entries {
			names = append(names, n)
		}
		sort.Strings(names)

		for _, n := range names {
			out = append(out, EntryPoint{
				Group: group,
				Name:  n,
				Value: entries[n],
				Dist:  &Distribution{Name: p.meta.Name, Version: p.meta.Version},
			})
		}
	}
	return out, nil
}

// Distributions lists checkout names that start with prefix. A broken
// checkout is listed when its name is readable, so that loading it reports
// its own error; otherwise it is skipped.
func (w *Workspace) Distributions(prefix string) ([]string, error) {
	projects, err := w.projects()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, p := range projects {
		if p.meta.Name != "" && hasNamePrefix(p.meta.Name, prefix) {
			names = append(names, p.meta.Name)
		}
	}
	return names, nil
}

func (w *Workspace) find(name string) (*project, error) {
	projects, err := w.projects()
	if err != nil {
		return nil, err
	}
	want := NormalizeName(name)
	for _, p := range projects {
		if NormalizeName(p.name()) == want {
			if p.err != nil {
				return nil, p.err
			}
			return p, nil
		}
	}
	return nil, notFound(name)
}

// projects loads every checkout reachable from the roots. Missing roots are
// skipped. A checkout that fails to load is kept with its error so that
// only lookups of that checkout fail.
func (w *Workspace) projects() ([]*project, error) {
	var out []*project
	seen := make(map[string]bool)
	add := func(dir string) {
		p := loadProject(dir)
		key := NormalizeName(p.name())
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}

	for _, root := range w.roots {
		if fileExists(filepath.Join(root, pyprojectFile)) {
			add(root)
			continue
		}

		entries, err := os.ReadDir(root)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read workspace %s: %w", root, err)
		}
		for _, entry := range entries {
			dir := filepath.Join(root, entry.Name())
			if entry.IsDir() && fileExists(filepath.Join(dir, pyprojectFile)) {
				add(dir)
			}
		}
	}
	return out, nil
}

// name is the declared project name, or the directory name when the
// pyproject.toml did not yield one.
func (p *project) name() string {
	if p.meta.Name != "" {
		return p.meta.Name
	}
	return filepath.Base(p.dir)
}

// loadProject parses the pyproject.toml of one checkout. Failures are
// recorded on the returned project.
func loadProject(dir string) *project {
	path := filepath.Join(dir, pyprojectFile)
	var doc pyproject
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return &project{dir: dir, err: fmt.Errorf("parse %s: %w", path, err)}
	}

	if doc.Project.Name == "" && doc.Tool.Poetry.Name != "" {
		return loadPoetryProject(dir, &doc)
	}

	pr := doc.Project
	if pr.Name == "" {
		return &project{dir: dir, err: &MissingKeyError{Package: dir, Key: "project.name"}}
	}
	if pr.Version == "" {
		return &project{dir: dir, meta: Metadata{Name: pr.Name}, err: &MissingKeyError{Package: pr.Name, Key: "project.version"}}
	}

	authors := make([]string, 0, len(pr.Authors))
	for _, a := range pr.Authors {
		switch {
		case a.Name != "" && a.Email != "":
			authors = append(authors, fmt.Sprintf("%s <%s>", a.Name, a.Email))
		case a.Email != "":
			authors = append(authors, a.Email)
		case a.Name != "":
			authors = append(authors, a.Name)
		}
	}

	requires, err := parseRequirements(pr.Dependencies)
	if err != nil {
		return &project{dir: dir, meta: Metadata{Name: pr.Name}, err: fmt.Errorf("parse %s: %w", path, err)}
	}

	return &project{
		dir: dir,
		meta: Metadata{
			Name:        pr.Name,
			Version:     pr.Version,
			Description: pr.Description,
			Authors:     authors,
			Homepage:    lookupFold(pr.URLs, "homepage"),
			Repository:  lookupFold(pr.URLs, "repository"),
			Requires:    requires,
		},
		eps: pr.EntryPoints,
	}
}

// loadPoetryProject maps a legacy [tool.poetry] table onto a project.
func loadPoetryProject(dir string, doc *pyproject) *project {
	po := doc.Tool.Poetry
	if po.Version == "" {
		return &project{dir: dir, meta: Metadata{Name: po.Name}, err: &MissingKeyError{Package: po.Name, Key: "tool.poetry.version"}}
	}

	deps := make([]string, 0, len(po.Dependencies))
	for name := range po.Dependencies {
		if !strings.EqualFold(name, "python") {
			deps = append(deps, name)
		}
	}
	sort.Strings(deps)

	requires := make([]Requirement, 0, len(deps))
	for _, name := range deps {
		constraint := "*"
		switch v := po.Dependencies[name].(type) {
		case string:
			constraint = v
		case map[string]any:
			if s, ok := v["version"].(string); ok {
				constraint = s
			}
			if optional, ok := v["optional"].(bool); ok && optional {
				continue
			}
		}
		requires = append(requires, Requirement{Name: name, Constraint: constraint})
	}

	return &project{
		dir: dir,
		meta: Metadata{
			Name:        po.Name,
			Version:     po.Version,
			Description: po.Description,
			Authors:     append([]string(nil), po.Authors...),
			Homepage:    po.Homepage,
			Repository:  po.Repository,
			Requires:    requires,
		},
		eps: po.Plugins,
	}
}

// locate finds the import package of a checkout in its flat or src/ layout.
func (p *project) locate(name string) (string, error) {
	searchDirs := []string{p.dir, filepath.Join(p.dir, "src")}
	for _, candidate := range importCandidates(nil, name) {
		if root, ok := locateIn(searchDirs, candidate); ok && root != p.dir {
			return root, nil
		}
	}
	return "", fmt.Errorf("%w: no source directory for %s in %s", ErrNotFound, name, p.dir)
}

// lookupFold returns the value of a case-insensitive key.
func lookupFold(m map[string]string, key string) string {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
