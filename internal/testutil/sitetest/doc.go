// SPDX-License-Identifier: MPL-2.0

// Package sitetest builds installed-distribution fixtures for tests.
//
// A fixture is a site-packages directory holding <name>-<version>.dist-info
// metadata next to the package sources, the layout a Python installer
// produces.
//
// # Usage
//
//	site := t.TempDir()
//	sitetest.Install(t, site, sitetest.NewDist("arcade_math", "1.0.0",
//	    sitetest.WithFile("arcade_math/ops.py", "@tool\ndef add(a, b):\n    return a + b\n"),
//	    sitetest.WithEntryPoint("arcade_toolkits", "toolkit_name", "arcade_math"),
//	))
package sitetest
