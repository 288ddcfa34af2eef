package main

import (
	"fmt"
	"os"

	"github.com/rl1809/coffee-order/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
