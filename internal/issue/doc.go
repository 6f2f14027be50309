// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable CLI errors and a catalog of Markdown
// help pages, rendered with glamour, for the failures users hit most.
package issue
