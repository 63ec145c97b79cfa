package main

import "github.com/cypherchain/cypher/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
