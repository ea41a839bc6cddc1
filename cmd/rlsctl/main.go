package main

import (
	"fmt"
	"os"
)

func main() {
	c := newCLI(os.Stdout)
	if err := newRootCmd(c).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
