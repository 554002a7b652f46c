package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nixpig/jailer/internal/cli"
)

func main() {
	if err := cli.RootCmd().Execute(); err != nil {
		var exitErr *cli.ExitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}

		os.Stderr.Write(fmt.Appendf(nil, "failed to execute: %s\n", err))
		os.Exit(1)
	}
}
