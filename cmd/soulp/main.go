package main

import (
	"fmt"
	"os"

	"soulp/logs"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		logs.Sync()
		os.Exit(1)
	}
}
