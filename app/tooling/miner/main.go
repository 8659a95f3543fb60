// This program mines candidates offered by a ledger node.
package main

import "github.com/ardanlabs/powledger/app/tooling/miner/cmd"

func main() {
	cmd.Execute()
}
