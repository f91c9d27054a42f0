package compiler

import (
	"sync"

	"github.com/microsoft/typescript-go/shim/ast"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	shimincremental "github.com/microsoft/typescript-go/shim/execute/incremental"
	shimparser "github.com/microsoft/typescript-go/shim/parser"

	"github.com/frida/frida-compile/internal/system"
)

// WatchConfig extends Config with the host capabilities the watch driver
// needs for its file subscriptions.
type WatchConfig struct {
	Config
	Sys system.System
}

// TSGoWatch is the watch front end. It owns the file subscriptions for
// project sources (the bundler watches only discovered externals), rebuilds
// the program when one changes, and reports each new program through the
// Start callback. Incremental state carries between programs so unchanged
// files are not re-checked.
type TSGoWatch struct {
	cfg     WatchConfig
	oneShot *TSGo
	mu      sync.Mutex
	incr    *shimincremental.Program

	onProgramCreate func()
	watches         map[string]system.Watch
	stopped         bool
}

var _ WatchFrontEnd = (*TSGoWatch)(nil)

// NewTSGoWatch prepares a watch front end and builds its initial program.
// File watches and incremental rebuilds begin at Start.
func NewTSGoWatch(cfg WatchConfig) (*TSGoWatch, error) {
	oneShot, err := NewTSGo(cfg.Config)
	if err != nil {
		return nil, err
	}
	return &TSGoWatch{
		cfg:     cfg,
		oneShot: oneShot,
		watches: make(map[string]system.Watch),
	}, nil
}

// Start creates the initial program, subscribes to its source files, and
// fires onProgramCreate. The same callback fires after every rebuild.
func (fe *TSGoWatch) Start(onProgramCreate func()) error {
	fe.mu.Lock()
	fe.onProgramCreate = onProgramCreate
	fe.incr = shimincremental.NewProgram(fe.oneShot.program, nil, fe.oneShot.host, fe.oneShot.parsed)
	fe.syncWatchesLocked()
	fe.mu.Unlock()

	if onProgramCreate != nil {
		onProgramCreate()
	}
	return nil
}

// Stop releases every file subscription. Safe to call more than once.
func (fe *TSGoWatch) Stop() {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.stopped = true
	for _, w := range fe.watches {
		w.Close()
	}
	fe.watches = make(map[string]system.Watch)
}

func (fe *TSGoWatch) EmitProject(write WriteHook) (*EmitResult, error) {
	fe.mu.Lock()
	program := fe.currentProgramLocked()
	fe.mu.Unlock()
	return emitProgram(program, fe.cfg.Transforms, write)
}

func (fe *TSGoWatch) ProjectFiles() []*ast.SourceFile {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return projectFiles(fe.currentProgramLocked())
}

func (fe *TSGoWatch) ParseJS(path string, text string) *ast.SourceFile {
	return shimparser.ParseJSSourceFile(path, text)
}

func (fe *TSGoWatch) currentProgramLocked() *shimcompiler.Program {
	if fe.incr != nil {
		return fe.incr.GetProgram()
	}
	return fe.oneShot.program
}

// handleSourceChange rebuilds the program, carrying incremental state from
// the previous one, then re-syncs subscriptions (the file set may have
// grown or shrunk) and reports the new program.
func (fe *TSGoWatch) handleSourceChange(system.FileEvent) {
	fe.mu.Lock()
	if fe.stopped {
		fe.mu.Unlock()
		return
	}
	program, err := createProgram(fe.oneShot.parsed, fe.oneShot.host)
	if err != nil {
		fe.mu.Unlock()
		return
	}
	fe.incr = shimincremental.NewProgram(program, fe.incr, fe.oneShot.host, fe.oneShot.parsed)
	fe.syncWatchesLocked()
	callback := fe.onProgramCreate
	fe.mu.Unlock()

	if callback != nil {
		callback()
	}
}

// syncWatchesLocked aligns the subscription set with the current program's
// source files. Caller holds fe.mu.
func (fe *TSGoWatch) syncWatchesLocked() {
	want := make(map[string]bool)
	for _, sf := range projectFiles(fe.currentProgramLocked()) {
		want[sf.FileName()] = true
	}
	for path, w := range fe.watches {
		if !want[path] {
			w.Close()
			delete(fe.watches, path)
		}
	}
	for path := range want {
		if _, ok := fe.watches[path]; ok {
			continue
		}
		w, err := fe.cfg.Sys.WatchFile(path, fe.handleSourceChange)
		if err != nil {
			continue
		}
		fe.watches[path] = w
	}
}
