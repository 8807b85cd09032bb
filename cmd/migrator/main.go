package main

import (
	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/cli"
)

func main() {
	cli.Execute()
}
