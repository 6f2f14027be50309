// SPDX-License-Identifier: MPL-2.0

package pkgindex

import (
	"errors"
)

// Chain is an Index that consults its members in order.
//
// Metadata and Locate return the first answer that is not ErrNotFound.
// EntryPoints and Distributions merge the answers of every member, keeping
// the first distribution of a given name; they fail only when every member
// fails.
type Chain []Index

// NewChain creates a chained index, dropping nil members.
func NewChain(indexes ...Index) Chain {
	c := make(Chain, 0, len(indexes))
	for _, idx := range indexes {
		if idx != nil {
			c = append(c, idx)
		}
	}
	return c
}

// Metadata implements Index.
func (c Chain) Metadata(name string) (*Metadata, error) {
	for _, idx := range c {
		meta, err := idx.Metadata(name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return meta, err
	}
	return nil, notFound(name)
}

// Locate implements Index.
func (c Chain) Locate(name string) (string, error) {
	for _, idx := range c {
		root, err := idx.Locate(name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return root, err
	}
	return "", notFound(name)
}

// EntryPoints implements Index.
func (c Chain) EntryPoints(group string) ([]EntryPoint, error) {
	var (
		out   []EntryPoint
		errs  []error
		owner = make(map[string]int)
	)
	for i, idx := range c {
		eps, err := idx.EntryPoints(group)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, ep := range eps {
			if ep.Dist != nil {
				key := NormalizeName(ep.Dist.Name)
				if first, ok := owner[key]; ok && first != i {
					// Shadowed by an earlier member.
					continue
				}
				owner[key] = i
			}
			out = append(out, ep)
		}
	}
	if len(c) > 0 && len(errs) == len(c) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// Distributions implements Index.
func (c Chain) Distributions(prefix string) ([]string, error) {
	var (
		out  []string
		errs []error
		seen = make(map[string]bool)
	)
	for _, idx := range c {
		names, err := idx.Distributions(prefix)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, name := range names {
			if key := NormalizeName(name); !seen[key] {
				seen[key] = true
				out = append(out, name)
			}
		}
	}
	if len(c) > 0 && len(errs) == len(c) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
