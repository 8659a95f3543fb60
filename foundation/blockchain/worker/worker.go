// Package worker keeps candidate blocks available for miners by rebuilding
// them in the background whenever the mempool or the chain changes.
package worker

import (
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/state"
)

// Worker manages the candidate building workflow for the blockchain.
type Worker struct {
	state      *state.State
	wg         sync.WaitGroup
	shut       chan struct{}
	startBuild chan bool
	evHandler  state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler state.EventHandler) *Worker {
	w := Worker{
		state:      st,
		shut:       make(chan struct{}),
		startBuild: make(chan bool, 1),
		evHandler:  evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.buildOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for range g {
		<-hasStarted
	}

	// Transactions loaded from storage need candidates too.
	w.SignalBuildCandidates()

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalBuildCandidates starts a build operation. If there is already a
// signal pending in the channel, just return since a build will start.
func (w *Worker) SignalBuildCandidates() {
	select {
	case w.startBuild <- true:
		w.evHandler("worker: SignalBuildCandidates: build signaled")
	default:
	}
}

// =============================================================================

// buildOperations handles building candidates.
func (w *Worker) buildOperations() {
	w.evHandler("worker: buildOperations: G started")
	defer w.evHandler("worker: buildOperations: G completed")

	for {
		select {
		case <-w.startBuild:
			if !w.isShutdown() {
				w.runBuildOperation()
			}
		case <-w.shut:
			w.evHandler("worker: buildOperations: received shut signal")
			return
		}
	}
}

// runBuildOperation creates candidates for every unreserved transaction.
func (w *Worker) runBuildOperation() {
	blocks, err := w.state.CreateCandidates()
	if err != nil {
		w.evHandler("worker: runBuildOperation: ERROR: %s", err)
		return
	}

	if len(blocks) > 0 {
		w.evHandler("worker: runBuildOperation: created[%d]", len(blocks))
	}
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
