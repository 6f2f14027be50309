// SPDX-License-Identifier: MPL-2.0

package pkgindex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	distInfoSuffix  = ".dist-info"
	metadataFile    = "METADATA"
	entryPointsFile = "entry_points.txt"
	topLevelFile    = "top_level.txt"
)

type (
	// SitePackages is an Index over installed distributions in one or more
	// site-packages directories. Directories are searched in order, so an
	// earlier directory shadows a later one for the same distribution.
	SitePackages struct {
		dirs []string
	}

	// distInfo is one *.dist-info directory found under a site directory.
	distInfo struct {
		siteDir string
		path    string
		// dirName is the distribution name encoded in the directory name.
		dirName string
	}
)

// NewSitePackages creates an index over the given site-packages directories.
func NewSitePackages(dirs ...string) *SitePackages {
	return &SitePackages{dirs: append([]string(nil), dirs...)}
}

// Dirs returns the searched site-packages directories.
func (s *SitePackages) Dirs() []string {
	return append([]string(nil), s.dirs...)
}

// Metadata reads the METADATA file of the named distribution.
func (s *SitePackages) Metadata(name string) (*Metadata, error) {
	di, err := s.find(name)
	if err != nil {
		return nil, err
	}

	header, err := readMetadataHeader(filepath.Join(di.path, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("read metadata for %q: %w", name, err)
	}

	meta, err := metadataFromHeader(name, header)
	if err != nil {
		return nil, err
	}

	if root, err := s.locateDist(di, name); err == nil {
		meta.SourceRoot = root
	}
	return meta, nil
}

// Locate resolves the source root of a package. The import name is taken
// from the distribution's top_level.txt when present.
func (s *SitePackages) Locate(name string) (string, error) {
	di, err := s.find(name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}
	return s.locateDist(di, name)
}

// EntryPoints lists entry points declared by every installed distribution
// under group. A malformed entry_points.txt fails the whole query.
func (s *SitePackages) EntryPoints(group string) ([]EntryPoint, error) {
	dists, err := s.distInfos()
	if err != nil {
		return nil, err
	}

	var out []EntryPoint
	seen := make(map[string]bool)
	for _, di := range dists {
		key := NormalizeName(di.dirName)
		if seen[key] {
			continue
		}
		seen[key] = true

		path := filepath.Join(di.path, entryPointsFile)
		if !fileExists(path) {
			continue
		}
		eps, err := readEntryPoints(path, group)
		if err != nil {
			return nil, err
		}

		dist := s.distribution(di)
		for i := range eps {
			eps[i].Dist = dist
		}
		out = append(out, eps...)
	}
	return out, nil
}

// Distributions lists the declared names of installed distributions that
// start with prefix. Distributions with unreadable metadata are skipped.
func (s *SitePackages) Distributions(prefix string) ([]string, error) {
	dists, err := s.distInfos()
	if err != nil {
		return nil, err
	}

	var names []string
	seen := make(map[string]bool)
	for _, di := range dists {
		header, err := readMetadataHeader(filepath.Join(di.path, metadataFile))
		if err != nil {
			continue
		}
		name := header.Get("Name")
		if name == "" || seen[NormalizeName(name)] {
			continue
		}
		seen[NormalizeName(name)] = true
		if hasNamePrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}

// distribution returns the owning distribution of a dist-info directory, or
// nil when its METADATA is unreadable or does not declare a name.
func (s *SitePackages) distribution(di distInfo) *Distribution {
	header, err := readMetadataHeader(filepath.Join(di.path, metadataFile))
	if err != nil || header.Get("Name") == "" {
		return nil
	}
	return &Distribution{Name: header.Get("Name"), Version: header.Get("Version")}
}

// locateDist resolves the source root for name, restricted to the site
// directory the distribution was installed into when it is known.
func (s *SitePackages) locateDist(di distInfo, name string) (string, error) {
	var declared []string
	searchDirs := s.dirs
	if di.path != "" {
		declared = readLines(filepath.Join(di.path, topLevelFile))
		searchDirs = []string{di.siteDir}
	}

	for _, candidate := range importCandidates(declared, name) {
		if root, ok := locateIn(searchDirs, candidate); ok {
			return root, nil
		}
	}
	return "", fmt.Errorf("%w: no source directory for %s", ErrNotFound, name)
}

// find returns the dist-info directory of the named distribution.
func (s *SitePackages) find(name string) (distInfo, error) {
	dists, err := s.distInfos()
	if err != nil {
		return distInfo{}, err
	}
	want := NormalizeName(name)
	for _, di := range dists {
		if NormalizeName(di.dirName) == want {
			return di, nil
		}
	}
	return distInfo{}, notFound(name)
}

// distInfos enumerates dist-info directories in search order. Missing site
// directories are skipped; any other read failure is returned.
func (s *SitePackages) distInfos() ([]distInfo, error) {
	var out []distInfo
	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read site-packages %s: %w", dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() || !strings.HasSuffix(entry.Name(), distInfoSuffix) {
				continue
			}
			stem := strings.TrimSuffix(entry.Name(), distInfoSuffix)
			// "<name>-<version>": the version never contains a dash in
			// wheel-normalized directory names.
			if i := strings.LastIndex(stem, "-"); i > 0 {
				stem = stem[:i]
			}
			out = append(out, distInfo{
				siteDir: dir,
				path:    filepath.Join(dir, entry.Name()),
				dirName: stem,
			})
		}
	}
	return out, nil
}

// readMetadataHeader parses the RFC 822 header block of a METADATA file.
// The message body (the long description) is not read.
func readMetadataHeader(path string) (textproto.MIMEHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := textproto.NewReader(bufio.NewReader(f)).ReadMIMEHeader()
	if err != nil && !(errors.Is(err, io.EOF) && len(header) > 0) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return header, nil
}

// metadataFromHeader maps core metadata fields onto Metadata.
func metadataFromHeader(pkg string, h textproto.MIMEHeader) (*Metadata, error) {
	name := h.Get("Name")
	if name == "" {
		return nil, &MissingKeyError{Package: pkg, Key: "Name"}
	}
	version := h.Get("Version")
	if version == "" {
		return nil, &MissingKeyError{Package: pkg, Key: "Version"}
	}

	authors := h.Values("Author-email")
	if len(authors) == 0 {
		authors = h.Values("Author")
	}

	repository := h.Get("Repository")
	if repository == "" {
		repository = projectURL(h.Values("Project-URL"), "repository")
	}
	homepage := h.Get("Home-page")
	if homepage == "" {
		homepage = projectURL(h.Values("Project-URL"), "homepage")
	}

	requires, err := parseRequirements(h.Values("Requires-Dist"))
	if err != nil {
		return nil, fmt.Errorf("package %q: %w", pkg, err)
	}

	return &Metadata{
		Name:        name,
		Version:     version,
		Description: h.Get("Summary"),
		Authors:     append([]string(nil), authors...),
		Homepage:    homepage,
		Repository:  repository,
		Requires:    requires,
	}, nil
}

// projectURL returns the URL of a "Project-URL: <label>, <url>" entry whose
// label matches (case-insensitively).
func projectURL(entries []string, label string) string {
	for _, entry := range entries {
		l, url, ok := strings.Cut(entry, ",")
		if ok && strings.EqualFold(strings.TrimSpace(l), label) {
			return strings.TrimSpace(url)
		}
	}
	return ""
}

// readEntryPoints reads one group out of an entry_points.txt file.
func readEntryPoints(path, group string) ([]EntryPoint, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
		KeyValueDelimiters:  "=",
	}, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	sec, err := cfg.GetSection(group)
	if err != nil {
		// No such group in this distribution.
		return nil, nil
	}

	eps := make([]EntryPoint, 0, len(sec.Keys()))
	for _, key := range sec.Keys() {
		eps = append(eps, EntryPoint{
			Group: group,
			Name:  key.Name(),
			Value: strings.TrimSpace(key.Value()),
		})
	}
	return eps, nil
}

// readLines returns the non-empty trimmed lines of a file, or nil when the
// file cannot be read.
func readLines(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
