// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
)

func main() {
	fmt.Println("hearthsync - Offline-First Engine for Household Finance Tracking")
	fmt.Println("=================================================================")
	fmt.Println()
	fmt.Println("hearthsync keeps a household ledger usable without connectivity:")
	fmt.Println("writes land in a durable pending log, reads overlay pending edits")
	fmt.Println("on the last known server snapshot, and a drainer replays the log")
	fmt.Println("when connectivity returns.")
	fmt.Println()
	fmt.Println("Packages:")
	fmt.Println()
	fmt.Println("  offline/    Generic engine: connectivity monitor, snapshot cache,")
	fmt.Println("              pending operation log, overlay, drainer, controllers")
	fmt.Println("  ledger/     Transactions, assets, debts, and the REST data-store client")
	fmt.Println("  auth/       Session provider over hosted-auth access tokens")
	fmt.Println("  localstore/ SQLite-backed durable local key/value storage")
	fmt.Println()
	fmt.Println("Example:")
	fmt.Println()
	fmt.Println("  examples/devserver/  Postgres-backed reference data store")
	fmt.Println("                       Run: cd examples/devserver && go run .")
	fmt.Println()
}
