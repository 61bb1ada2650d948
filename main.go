package main

import (
	"github.com/claudehenchoz/trinket/cmd"
)

func main() {
	cmd.Execute()
}
