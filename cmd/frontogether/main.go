// Command frontogether is a terminal client that lets a language model edit
// the files of the current directory through tool calls.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
