package main

import (
	"boscoin.io/sctester/cmd/sctester/cmd"
)

func main() {
	cmd.Execute()
}
