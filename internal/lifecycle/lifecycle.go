// Package lifecycle runs cleanup hooks when the process receives SIGINT or
// SIGTERM, then exits with the conventional signal status.
package lifecycle

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/spf13/afero"

	"github.com/meza/modrinth-pack-builder/internal/exitcode"
)

type Handler func(os.Signal)

type HandlerID int64

var (
	watchedSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

	nextID atomic.Int64

	listenOnce sync.Once
	signals    chan os.Signal

	registryMu sync.RWMutex
	registry   = make(map[HandlerID]Handler)
	order      []HandlerID

	channelFactory = newSignalChan
	notifyFunc     = signal.Notify
	stopFunc       = signal.Stop
	exitFunc       = os.Exit
)

// Register adds a hook. Hooks run newest first, so cleanup unwinds in the
// reverse order it was set up.
func Register(handler Handler) HandlerID {
	if handler == nil {
		return 0
	}

	listenOnce.Do(listen)

	id := HandlerID(nextID.Add(1))

	registryMu.Lock()
	registry[id] = handler
	order = append(order, id)
	registryMu.Unlock()

	return id
}

func Unregister(id HandlerID) {
	if id == 0 {
		return
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	delete(registry, id)
	for i, existing := range order {
		if existing == id {
			order = append(order[:i], order[i+1:]...)
			break
		}
	}
}

// RemoveOnSignal deletes paths if the run is interrupted before the returned
// release function is called. Used for half-written packs and staging dirs.
func RemoveOnSignal(fs afero.Fs, paths ...string) (release func()) {
	id := Register(func(os.Signal) {
		for _, path := range paths {
			_ = fs.RemoveAll(path)
		}
	})
	return func() { Unregister(id) }
}

func listen() {
	signals = channelFactory()
	notifyFunc(signals, watchedSignals...)

	go func() {
		sig := <-signals
		runHandlers(sig)
		exitFunc(ExitCode(sig))
	}()
}

func runHandlers(sig os.Signal) {
	registryMu.RLock()
	ids := append([]HandlerID(nil), order...)
	snapshot := make(map[HandlerID]Handler, len(registry))
	for id, handler := range registry {
		snapshot[id] = handler
	}
	registryMu.RUnlock()

	for i := len(ids) - 1; i >= 0; i-- {
		if handler := snapshot[ids[i]]; handler != nil {
			invoke(handler, sig)
		}
	}
}

// invoke keeps one panicking hook from skipping the rest.
func invoke(handler Handler, sig os.Signal) {
	defer func() {
		_ = recover()
	}()
	handler(sig)
}

func ExitCode(sig os.Signal) int {
	switch sig {
	case os.Interrupt:
		return exitcode.Interrupted
	case syscall.SIGTERM:
		return exitcode.Terminated
	default:
		return exitcode.Failure
	}
}

// reset clears global state (tests only).
func reset() {
	if signals != nil {
		stopFunc(signals)
	}
	signals = nil

	listenOnce = sync.Once{}
	nextID.Store(0)

	registryMu.Lock()
	registry = make(map[HandlerID]Handler)
	order = nil
	registryMu.Unlock()

	channelFactory = newSignalChan
	notifyFunc = signal.Notify
	stopFunc = signal.Stop
	exitFunc = os.Exit
}

func newSignalChan() chan os.Signal {
	return make(chan os.Signal, 1)
}
