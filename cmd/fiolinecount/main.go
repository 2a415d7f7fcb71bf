// fiolinecount prints the number of lines of a fio log and how long counting took.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/sanspareilsmyn/fiolens/internal/fiolog"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s FILE\n", os.Args[0])
		os.Exit(2)
	}
	path := os.Args[1]

	start := time.Now()
	fmt.Printf("Starting line count of '%s'\n", path)
	n, err := fiolog.CountLines(path)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "File path %s does not exist. Exiting...\n", path)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Lines in file: %d\n", n)
	fmt.Printf("Time: %d nsec\n", time.Since(start).Nanoseconds())
}
