// Command yov is the CLI driver spec.md §6.1 describes:
// `yov [flags…] <script-path> [script-args…]`. It parses the flag table,
// compiles the script, and executes it unless `-analyze` or a compile-time
// diagnostic says otherwise.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/yov-lang/yov"
	"github.com/yov-lang/yov/internal/hostos/native"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("yov", flag.ContinueOnError)
	fs.Usage = func() { printHelp(fs) }

	analyze := fs.Bool("analyze", false, "run all compilation passes, do not execute")
	trace := fs.Bool("trace", false, "enable dev-log output")
	userAssert := fs.Bool("user_assert", false, "require interactive yes/no confirmation before any effectful intrinsic")
	noUser := fs.Bool("no_user", false, "answer yes to every assertion automatically")
	waitEnd := fs.Bool("wait_end", false, "after exit, wait for Enter before closing the console")
	help := fs.Bool("help", false, "print help and exit 0")
	fs.BoolVar(help, "h", false, "print help and exit 0")
	version := fs.Bool("version", false, "print version and exit 0")
	fs.BoolVar(version, "v", false, "print version and exit 0")

	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if *help {
		printHelp(fs)
		return 0
	}
	if *version {
		fmt.Printf("yov %d.%d.%d\n", yov.Version.Major, yov.Version.Minor, yov.Version.Revision)
		return 0
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "yov: missing script-path")
		printHelp(fs)
		return 2
	}
	scriptPath, scriptArgs := rest[0], rest[1:]

	host := native.New()
	prog, err := yov.Compile(scriptPath, yov.Options{
		Analyze:    *analyze,
		Trace:      *trace,
		UserAssert: *userAssert,
		NoUser:     *noUser,
		ScriptArgs: scriptArgs,
		Host:       host,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "yov:", err)
		return 1
	}

	prog.Reporter.Fprint(os.Stderr)
	code := prog.Run()

	if *waitEnd {
		fmt.Fprintln(os.Stdout, "press Enter to continue...")
		_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
	}
	return code
}

func printHelp(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage: yov [flags…] <script-path> [script-args…]")
	fs.PrintDefaults()
}
