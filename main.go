package main

import (
	_ "time/tzdata"

	"github.com/crystaldolphin/awaybot/cmd"
)

func main() {
	cmd.Execute()
}
