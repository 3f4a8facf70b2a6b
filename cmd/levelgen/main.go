// levelgen generates procedural terrain and object placements from a YAML
// config and writes them out for a game engine to instantiate.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "generate", "gen":
		err = cmdGenerate(args)
	case "watch":
		err = cmdWatch(args)
	case "defaults":
		err = cmdDefaults(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`levelgen - procedural terrain and object placement

Usage:
  levelgen <command> [options]

Commands:
  generate [-config f] [-seed n] [-out dir] [-debug]   Generate a level once
  watch -config f [-out dir] [-debug]                  Regenerate whenever the config changes
  defaults [-o file]                                   Print or save the default config

Examples:
  levelgen defaults -o levelgen.yaml
  levelgen generate -config levelgen.yaml -seed 1234
  levelgen watch -config levelgen.yaml -out ./preview`)
}
