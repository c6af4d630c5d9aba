package main

import (
	"fmt"
	"os"
)

// main hands off to the cobra root. serve is the default command.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
