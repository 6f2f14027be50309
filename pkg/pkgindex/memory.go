// SPDX-License-Identifier: MPL-2.0

package pkgindex

import (
	"fmt"
	"slices"
)

type (
	// Memory is a map-backed Index. Packages are reported in insertion order.
	// It is intended for tests and for embedding callers that already know
	// which packages exist.
	Memory struct {
		order    []string
		packages map[string]Package

		// EntryPointsErr, when set, is returned by EntryPoints.
		EntryPointsErr error
		// DistributionsErr, when set, is returned by Distributions.
		DistributionsErr error
	}

	// Package is one distribution registered in a Memory index.
	Package struct {
		Metadata Metadata
		// MetadataErr, when set, is returned by Metadata instead of Metadata.
		MetadataErr error
		// SourceRoot is returned by Locate; empty means "cannot be located".
		SourceRoot string
		// EntryPoints are reported with Dist set to this package unless
		// NoDistribution is true.
		EntryPoints    []EntryPoint
		NoDistribution bool
	}
)

// NewMemory creates an empty in-memory index.
func NewMemory(pkgs ...Package) *Memory {
	m := &Memory{packages: make(map[string]Package)}
	for _, p := range pkgs {
		m.Add(p)
	}
	return m
}

// Add registers or replaces a package, keyed by its normalized name.
func (m *Memory) Add(p Package) {
	key := NormalizeName(p.Metadata.Name)
	if _, ok := m.packages[key]; !ok {
		m.order = append(m.order, key)
	}
	m.packages[key] = p
}

// Metadata implements Index.
func (m *Memory) Metadata(name string) (*Metadata, error) {
	p, ok := m.packages[NormalizeName(name)]
	if !ok {
		return nil, notFound(name)
	}
	if p.MetadataErr != nil {
		return nil, p.MetadataErr
	}
	meta := p.Metadata
	meta.Authors = slices.Clone(meta.Authors)
	meta.Requires = slices.Clone(meta.Requires)
	meta.SourceRoot = p.SourceRoot
	return &meta, nil
}

// Locate implements Index.
func (m *Memory) Locate(name string) (string, error) {
	p, ok := m.packages[NormalizeName(name)]
	if !ok {
		return "", notFound(name)
	}
	if p.SourceRoot == "" {
		return "", fmt.Errorf("%w: no source directory for %s", ErrNotFound, name)
	}
	return p.SourceRoot, nil
}

// EntryPoints implements Index.
func (m *Memory) EntryPoints(group string) ([]EntryPoint, error) {
	if m.EntryPointsErr != nil {
		return nil, m.EntryPointsErr
	}
	var out []EntryPoint
	for _, key := range m.order {
		p := m.packages[key]
		for _, ep := range p.EntryPoints {
			if ep.Group != "" && ep.Group != group {
				continue
			}
			ep.Group = group
			if p.NoDistribution {
				ep.Dist = nil
			} else {
				ep.Dist = &Distribution{Name: p.Metadata.Name, Version: p.Metadata.Version}
			}
			out = append(out, ep)
		}
	}
	return out, nil
}

// Distributions implements Index.
func (m *Memory) Distributions(prefix string) ([]string, error) {
	if m.DistributionsErr != nil {
		return nil, m.DistributionsErr
	}
	var out []string
	for _, key := range m.order {
		name := m.packages[key].Metadata.Name
		if hasNamePrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out, nil
}
