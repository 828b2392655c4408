// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/revkit/rev/cmd/rev"

func main() {
	cmd.Execute()
}
