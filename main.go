// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/confrun/confrun/cmd/confrun"

func main() {
	cmd.Execute()
}
