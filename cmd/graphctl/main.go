// Command graphctl drives the schema store, change log and graph upload pipeline from a shell,
// using the same STORE_DRIVER / GRAPH_BACKEND environment as the server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(newEnvServices).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
