package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/frida/frida-compile/internal/bundler"
	"github.com/frida/frida-compile/internal/catalog"
	"github.com/frida/frida-compile/internal/compiler"
	"github.com/frida/frida-compile/internal/minify"
	"github.com/frida/frida-compile/internal/pathutil"
	"github.com/frida/frida-compile/internal/rewrite"
	"github.com/frida/frida-compile/internal/system"
	"github.com/frida/frida-compile/internal/watch"
)

// session holds everything one compilation shares between one-shot and
// watch modes.
type session struct {
	sys        *system.OS
	cat        *catalog.Catalog
	flags      cliFlags
	entrypoint string
	output     string
	reporter   *compiler.Reporter
	cwd        string
}

func newSession(flags cliFlags) (*session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not get working directory: %w", err)
	}
	cwdPosix := pathutil.ToPosix(cwd)

	entrypoint := pathutil.ToPosix(flags.Entrypoint)
	if !pathutil.IsAbs(entrypoint) {
		entrypoint = pathutil.Resolve(cwdPosix, entrypoint)
	}

	sys := system.NewOS()
	if !sys.FileExists(entrypoint) {
		return nil, fmt.Errorf("entrypoint not found: %s", flags.Entrypoint)
	}

	projectRoot := findProjectRoot(sys, entrypoint)
	compilerRoot := findCompilerRoot(sys, projectRoot)

	return &session{
		sys:        sys,
		cat:        catalog.New(sys, projectRoot, compilerRoot),
		flags:      flags,
		entrypoint: entrypoint,
		output:     flags.Output,
		reporter:   compiler.NewReporter(os.Stderr, cwd, compiler.IsPrettyOutput()),
		cwd:        cwd,
	}, nil
}

func (s *session) compilerConfig() compiler.Config {
	return compiler.Config{
		Entrypoint:  s.entrypoint,
		ProjectRoot: s.cat.ProjectRoot(),
		SourceMaps:  s.flags.SourceMaps,
		Transforms:  []rewrite.Transform{rewrite.RemoveUseStrict},
	}
}

func (s *session) bundlerOptions() bundler.Options {
	opts := bundler.Options{
		Entrypoint: s.entrypoint,
		SourceMaps: s.flags.SourceMaps,
	}
	if s.flags.Compress {
		opts.Minifier = minify.Esbuild{}
	}
	return opts
}

// reportFailure renders a bundling failure, one actionable line per issue.
func (s *session) reportFailure(err error) {
	var compilation *bundler.CompilationError
	if errors.As(err, &compilation) {
		s.reporter.ReportAll(compilation.Diagnostics)
		return
	}
	var unresolvable *bundler.UnresolvableError
	if errors.As(err, &unresolvable) {
		for _, name := range unresolvable.Names {
			fmt.Fprintf(os.Stderr, "error: unable to resolve %q\n", name)
		}
		return
	}
	var commonJS *bundler.CommonJSError
	if errors.As(err, &commonJS) {
		for _, path := range commonJS.Paths {
			fmt.Fprintf(os.Stderr, "error: CommonJS module not supported: %s\n", path)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

func (s *session) writeBundle(bundle []byte) error {
	output := pathutil.ToPosix(s.output)
	if !pathutil.IsAbs(output) {
		output = pathutil.Resolve(pathutil.ToPosix(s.cwd), output)
	}
	return s.sys.WriteFile(output, string(bundle))
}

// runBuild performs a one-shot compile and bundle.
func runBuild(flags cliFlags) int {
	s, err := newSession(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	frontEnd, err := compiler.NewTSGo(s.compilerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	b := bundler.New(s.sys, s.cat, frontEnd, s.bundlerOptions())
	bundle, err := b.Bundle()
	if err != nil {
		s.reportFailure(err)
		return 1
	}

	if err := s.writeBundle(bundle); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// runWatch compiles continuously until interrupted.
func runWatch(flags cliFlags) int {
	s, err := newSession(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	frontEnd, err := compiler.NewTSGoWatch(compiler.WatchConfig{
		Config: s.compilerConfig(),
		Sys:    s.sys,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	b := bundler.New(s.sys, s.cat, frontEnd, s.bundlerOptions())
	controller := watch.New(s.sys, b, frontEnd)

	controller.OnCompilationStarting = func() {
		if !flags.PreserveWatchOutput {
			fmt.Fprint(os.Stderr, "\033[2J\033[H")
		}
		fmt.Fprintln(os.Stderr, "compiling...")
	}
	controller.OnCompilationFinished = func() {
		fmt.Fprintln(os.Stderr, "watching for changes...")
	}
	controller.OnBundleUpdated = func(bundle []byte) {
		if err := s.writeBundle(bundle); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", s.output)
	}
	controller.OnError = s.reportFailure

	if err := controller.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	<-sigCh
	fmt.Fprintln(os.Stderr, "\nshutting down...")
	controller.Stop()
	return 0
}

// findProjectRoot walks up from the entrypoint to the nearest directory
// with a package manifest; the entrypoint's own directory serves when the
// project has none.
func findProjectRoot(sys system.System, entrypoint string) string {
	dir := pathutil.Dir(entrypoint)
	for probe := dir; ; {
		if sys.FileExists(pathutil.Join(probe, "package.json")) {
			return probe
		}
		parent := pathutil.Dir(probe)
		if parent == probe {
			return dir
		}
		probe = parent
	}
}

// findCompilerRoot locates the compiler package whose node_modules hold the
// builtin shims: FRIDA_COMPILE_ROOT when set, the project's embedded copy
// otherwise, the project itself as a last resort.
func findCompilerRoot(sys system.System, projectRoot string) string {
	if root := sys.Getenv("FRIDA_COMPILE_ROOT"); root != "" {
		return pathutil.Normalize(pathutil.ToPosix(root))
	}
	embedded := pathutil.Join(projectRoot, "node_modules", catalog.CompilerPackageName)
	if sys.DirectoryExists(embedded) {
		return embedded
	}
	return projectRoot
}
