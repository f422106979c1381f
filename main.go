package main

import (
	"context"
	"fmt"
	"os"

	"github.com/zerbeln/GridWorld/benchmarks"
)

// main entry point to all the experiments
func main() {
	rootCommand := benchmarks.GetRootCommand()
	if err := rootCommand.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
