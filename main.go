// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/arcadeai/arcade/cmd/arcade"

func main() {
	cmd.Execute()
}
