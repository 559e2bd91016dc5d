// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and osdscan contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/cobaltcore-dev/osdscan/pkg/commands"
)

func main() {
	commands.Execute()
}
