// Command frida-compile compiles an agent entrypoint and its dependencies
// into a single bundle the instrumentation runtime can load.
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		printUsage()
		return 1
	}
	if flags.ShowVersion {
		fmt.Println("frida-compile", version)
		return 0
	}
	if flags.ShowHelp {
		printUsage()
		return 0
	}

	if flags.Watch {
		return runWatch(flags)
	}
	return runBuild(flags)
}

// cliFlags holds the parsed command line.
type cliFlags struct {
	Entrypoint          string
	Output              string
	Watch               bool
	SourceMaps          bool
	Compress            bool
	PreserveWatchOutput bool
	ShowVersion         bool
	ShowHelp            bool
}

// parseArgs separates the positional entrypoint from flags. Flags may
// appear on either side of the entrypoint.
func parseArgs(args []string) (cliFlags, error) {
	f := cliFlags{SourceMaps: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-o", "--output":
			if i+1 >= len(args) {
				return f, fmt.Errorf("%s requires a value", arg)
			}
			i++
			f.Output = args[i]
		case "-w", "--watch":
			f.Watch = true
		case "-S", "--no-source-maps":
			f.SourceMaps = false
		case "-c", "--compress":
			f.Compress = true
		case "--preserve-watch-output":
			f.PreserveWatchOutput = true
		case "-v", "--version":
			f.ShowVersion = true
		case "-h", "--help":
			f.ShowHelp = true
		default:
			if len(arg) > 1 && arg[0] == '-' {
				return f, fmt.Errorf("unknown flag: %s", arg)
			}
			if f.Entrypoint != "" {
				return f, fmt.Errorf("only one entrypoint may be given")
			}
			f.Entrypoint = arg
		}
	}

	if f.ShowVersion || f.ShowHelp {
		return f, nil
	}
	if f.Entrypoint == "" {
		return f, fmt.Errorf("no entrypoint specified")
	}
	if f.Output == "" {
		return f, fmt.Errorf("no output file specified (-o)")
	}
	return f, nil
}

func printUsage() {
	fmt.Println("frida-compile - compile an agent into a loadable bundle")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  frida-compile <entrypoint> -o <output> [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -o, --output <path>       Write the bundle to <path>")
	fmt.Println("  -w, --watch               Watch sources and rebundle on change")
	fmt.Println("  -S, --no-source-maps      Omit source maps")
	fmt.Println("  -c, --compress            Compress using terser-grade minification")
	fmt.Println("  --preserve-watch-output   Don't clear the console between rebuilds")
	fmt.Println("  -v, --version             Print version and exit")
	fmt.Println("  -h, --help                Print this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  frida-compile agent/index.ts -o _agent.js")
	fmt.Println("  frida-compile agent/index.ts -o _agent.js -w")
	fmt.Println("  frida-compile agent/index.ts -o _agent.js -c -S")
	fmt.Println()
}
