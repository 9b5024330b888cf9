package main

import (
	"github.com/go-pine/pine/cmd/pine/cmds"
)

func main() {
	cmds.New().Execute()
}
