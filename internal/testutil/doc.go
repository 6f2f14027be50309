// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include environment variable management (MustSetenv, SetConfigHome),
// filesystem fixtures (MustMkdirAll, MustWriteFile, WriteTree) and Python
// distribution fixtures in the sitetest subpackage.
package testutil
