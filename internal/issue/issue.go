// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Id identifies a catalog page.
type Id int

const (
	ToolkitNotFoundId Id = iota + 1
	ToolkitInvalidId
	NoToolkitsFoundId
	LockFileNotFoundId
	LockFileInvalidId
	LockMismatchId
	ConfigLoadFailedId
)

type (
	MarkdownMsg string

	HttpLink string

	// Issue is one catalog page.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

func (i *Issue) Id() Id { return i.id }

func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// DocLinks returns a copy of the page's documentation links.
func (i *Issue) DocLinks() []HttpLink { return slices.Clone(i.docLinks) }

// Render renders the page with a glamour style ("dark", "light", "notty",
// or a JSON style path).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	toolkitNotFoundIssue = &Issue{
		id: ToolkitNotFoundId,
		mdMsg: `
# Toolkit not found

No installed distribution or workspace project has that name.

## Things you can try
- List what is visible to arcade:
~~~
$ arcade toolkit list
~~~
- Install the toolkit into the active environment:
~~~
$ pip install arcade-math
~~~
- Point arcade at another environment or a source checkout:
~~~
$ arcade --site-packages /path/to/site-packages toolkit show arcade_math
$ arcade --workspace ~/src/toolkits toolkit show arcade_math
~~~`,
		docLinks: []HttpLink{"https://packaging.python.org/en/latest/specifications/core-metadata/"},
	}

	toolkitInvalidIssue = &Issue{
		id: ToolkitInvalidId,
		mdMsg: `
# Toolkit could not be assembled

The package was found, but its metadata or sources are not usable as a toolkit.

## Common causes
- METADATA is missing the Name or Version field
- The import package directory is missing
- A source file does not parse
- No function carries the ` + "`@tool`" + ` decorator

## Things you can try
- Run with ` + "`--verbose`" + ` to see the full error chain
- Reinstall the distribution
- Check the file and line reported above`,
	}

	noToolkitsFoundIssue = &Issue{
		id: NoToolkitsFoundId,
		mdMsg: `
# No toolkits found

Discovery finished, but nothing qualified as a toolkit.

## How toolkits are found
1. Entry points in the ` + "`arcade_toolkits`" + ` group
2. Distributions whose name starts with ` + "`arcade_`" + `

## Things you can try
- Activate the virtual environment that has your toolkits installed
- Add the site-packages directory to ` + "`site_packages`" + ` in your config
- Check skipped toolkits in the warnings above`,
		docLinks: []HttpLink{"https://packaging.python.org/en/latest/specifications/entry-points/"},
	}

	lockFileNotFoundIssue = &Issue{
		id: LockFileNotFoundId,
		mdMsg: `
# Lock file not found

There is no ` + "`pack.lock.toml`" + ` in that directory.

## Things you can try
- Create one from an installed toolkit:
~~~
$ arcade lock write arcade_math .
~~~`,
	}

	lockFileInvalidIssue = &Issue{
		id: LockFileInvalidId,
		mdMsg: `
# Lock file is invalid

` + "`pack.lock.toml`" + ` could not be parsed or is missing required fields.

## Expected layout
~~~toml
[pack]
name = "arcade_math"
description = "Math tools"
version = "1.0.0"
author = "Jane Doe"
email = "jane@example.com"

[depends]
arcade-ai = ">=0.1"

[tools]
add = "==1.0.0"
~~~

## Things you can try
- Fix the field reported above
- Regenerate the file with ` + "`arcade lock write`",
		docLinks: []HttpLink{"https://toml.io/en/v1.0.0"},
	}

	lockMismatchIssue = &Issue{
		id: LockMismatchId,
		mdMsg: `
# Lock file does not match the toolkit

The tools or version pinned in the lock file are not what is installed.

## Things you can try
- Install the pinned toolkit version
- Regenerate the lock file from the installed toolkit:
~~~
$ arcade lock write <package> .
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

## Things you can try
- Check the CUE syntax and the field reported above
- Print the effective configuration:
~~~
$ arcade config show
~~~
- Write a fresh default file:
~~~
$ arcade config init
~~~`,
		docLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	issues = map[Id]*Issue{
		toolkitNotFoundIssue.Id():  toolkitNotFoundIssue,
		toolkitInvalidIssue.Id():   toolkitInvalidIssue,
		noToolkitsFoundIssue.Id():  noToolkitsFoundIssue,
		lockFileNotFoundIssue.Id(): lockFileNotFoundIssue,
		lockFileInvalidIssue.Id():  lockFileInvalidIssue,
		lockMismatchIssue.Id():     lockMismatchIssue,
		configLoadFailedIssue.Id(): configLoadFailedIssue,
	}
)

// Values returns every page ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

// Get returns the page for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
