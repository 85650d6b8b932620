// Command httpserver starts the multi-threaded origin server:
//
//	httpserver [port] [host] [workers]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
