// Command hallsim drives the hallway core from a terminal, without a
// renderer. It is handy for walking through director transitions and
// checking prefab edits.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
)

func main() {
	segments := flag.Int("segments", 0, "override total_segments from director.yaml")
	seed := flag.Int64("seed", 0, "anomaly seed (0 = random)")
	logFile := flag.String("log", "", "write core logs to this file")
	flag.Parse()

	// The TUI owns the terminal; core logs go to a file or nowhere.
	log.SetOutput(io.Discard)
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			fmt.Printf("Error opening log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	if err := run(*segments, *seed); err != nil {
		fmt.Printf("Error running hallsim: %v\n", err)
		os.Exit(1)
	}
}
