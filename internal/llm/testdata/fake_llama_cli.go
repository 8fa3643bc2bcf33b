// fake_llama_cli mimics llama-cli's stdin/stdout contract for tests.
// Behavior is picked with --fake-mode; every other flag is ignored.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

func main() {
	mode := "echo"
	reply := "Paris is the capital."
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--fake-mode":
			if i+1 < len(args) {
				mode = args[i+1]
				i++
			}
		case "--fake-reply":
			if i+1 < len(args) {
				reply = args[i+1]
				i++
			}
		}
	}

	switch mode {
	case "noread":
		fmt.Print("hello\n")
		return
	case "sleep":
		time.Sleep(30 * time.Second)
		return
	}

	in, _ := io.ReadAll(os.Stdin)
	prompt := string(in)

	switch mode {
	case "echo":
		fmt.Printf("%s\n%s\n> EOF by user\n", prompt, reply)
	case "args":
		fmt.Println(strings.Join(os.Args[1:], "|"))
	case "fail":
		fmt.Fprintln(os.Stderr, "error: failed to load model")
		os.Exit(3)
	case "blank":
		fmt.Print("  \n\t\n")
	case "badutf8":
		os.Stdout.Write([]byte{0xff, 0xfe, 0xfd})
	case "markers":
		fmt.Print("> \n\n> \n\n")
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", mode)
		os.Exit(2)
	}
}
