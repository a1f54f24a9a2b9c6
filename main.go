// SPDX-License-Identifier: MPL-2.0

// Command urdfkit loads, checks and inspects URDF robot descriptions.
package main

import cmd "github.com/urdfkit/urdfkit/cmd/urdfkit"

func main() {
	cmd.Execute()
}
