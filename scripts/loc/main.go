// Package main reports the size of this repository: the lines of Go source
// below each top-level package directory and in total.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andyballingall/aftercare/internal/linecount"
)

func main() {
	root := "."
	if len(os.Args) > 1 {
		root = os.Args[1]
	}

	ctx := context.Background()
	total := 0
	for _, dir := range []string{"cmd", "internal", "scripts"} {
		n, err := linecount.Count(ctx, filepath.Join(root, dir), ".go")
		if err != nil {
			fmt.Printf("❌ Failed to count %s: %v\n", dir, err)
			os.Exit(1)
		}
		fmt.Printf("%8d %s\n", n, dir)
		total += n
	}
	fmt.Printf("%8d total\n", total)
}
