package processor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"mentrachess/internal/core"
	"mentrachess/internal/uci"
)

// EngineTask contains a computer move calculation request
type EngineTask struct {
	GameID   string
	FEN      string
	Color    core.Color
	Player   *core.Player
	Response chan<- EngineResult
}

// EngineResult contains the outcome of an engine calculation
type EngineResult struct {
	GameID string
	Move   string
	Score  int
	Depth  int
	IsMate bool
	MateIn int
	Error  error
}

// EngineQueue manages async computations against the external
// move-suggestion engine.
type EngineQueue struct {
	tasks      chan EngineTask
	workers    int
	enginePath string
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewEngineQueue creates a queue with the specified worker count
func NewEngineQueue(workerCount int, enginePath string) *EngineQueue {
	if workerCount < 1 {
		workerCount = 2
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &EngineQueue{
		tasks:      make(chan EngineTask, 100),
		workers:    workerCount,
		enginePath: enginePath,
		ctx:        ctx,
		cancel:     cancel,
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

// SubmitAsync queues a task and invokes callback with the result.
func (q *EngineQueue) SubmitAsync(gameID, fen string, color core.Color, player *core.Player, callback func(EngineResult)) {
	response := make(chan EngineResult, 1)

	task := EngineTask{
		GameID:   gameID,
		FEN:      fen,
		Color:    color,
		Player:   player,
		Response: response,
	}

	go func() {
		select {
		case result := <-response:
			callback(result)
		case <-q.ctx.Done():
		}
	}()

	select {
	case q.tasks <- task:
	default:
		response <- EngineResult{
			GameID: gameID,
			Error:  fmt.Errorf("engine queue full"),
		}
	}
}

// worker processes engine tasks. Each worker owns its engine instance;
// if the external binary is missing the worker stays alive and fails
// tasks individually, so the rest of the server keeps working.
func (q *EngineQueue) worker(id int) {
	defer q.wg.Done()

	eng, err := uci.New(q.enginePath)
	if err != nil {
		log.Printf("Engine worker %d unavailable: %v", id, err)
	} else {
		defer eng.Close()
	}

	for {
		select {
		case task, ok := <-q.tasks:
			if !ok {
				return
			}

			var result EngineResult
			if eng == nil {
				result = EngineResult{GameID: task.GameID, Error: fmt.Errorf("move-suggestion engine unavailable")}
			} else {
				result = q.processTask(eng, task)
			}

			select {
			case task.Response <- result:
			case <-time.After(100 * time.Millisecond):
				// Receiver abandoned, discard result
			}

		case <-q.ctx.Done():
			return
		}
	}
}

// processTask executes a single engine calculation
func (q *EngineQueue) processTask(eng *uci.Engine, task EngineTask) EngineResult {
	result := EngineResult{GameID: task.GameID}

	if task.Player.Type == core.PlayerComputer {
		eng.SetSkillLevel(task.Player.Level)
	}

	eng.SetPosition(task.FEN, nil)

	searchTime := 1000
	if task.Player.Type == core.PlayerComputer && task.Player.SearchTime > 0 {
		searchTime = task.Player.SearchTime
	}

	search, err := eng.Search(searchTime)
	if err != nil {
		result.Error = err
		return result
	}

	result.Move = search.BestMove
	result.Score = search.Score
	result.Depth = search.Depth
	result.IsMate = search.IsMate
	result.MateIn = search.MateIn
	return result
}

// Shutdown stops the workers
func (q *EngineQueue) Shutdown(timeout time.Duration) {
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		log.Printf("Engine queue shutdown timeout")
	}
}
