package main

import (
	"os"

	"github.com/qhosting/smsegment/cmd/smsegment/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
