// Package uci adapts an external UCI engine (stockfish by default) as the
// move-suggestion collaborator for computer players. The engine is only
// ever asked for a candidate move; legality always comes from our own
// rules engine.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const DefaultEnginePath = "stockfish"

type Engine struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Scanner
	mu     sync.Mutex
}

type SearchResult struct {
	BestMove string
	Score    int
	Depth    int
	IsMate   bool
	MateIn   int
}

func New(path string) (*Engine, error) {
	if path == "" {
		path = DefaultEnginePath
	}
	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start engine: %v", err)
	}

	e := &Engine{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewScanner(stdout),
	}

	if err := e.initialize(); err != nil {
		e.Close()
		return nil, err
	}

	return e, nil
}

// SetSkillLevel sets the engine skill level (0-20)
func (e *Engine) SetSkillLevel(level int) {
	if level < 0 {
		level = 0
	} else if level > 20 {
		level = 20
	}
	e.sendCommand(fmt.Sprintf("setoption name Skill Level value %d", level))
}

func (e *Engine) initialize() error {
	e.sendCommand("uci")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan bool)
	go func() {
		for e.stdout.Scan() {
			if e.stdout.Text() == "uciok" {
				done <- true
				return
			}
		}
		done <- false
	}()

	select {
	case success := <-done:
		if !success {
			return fmt.Errorf("engine closed unexpectedly")
		}
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for uciok")
	}

	e.sendCommand("isready")
	return e.waitReady()
}

func (e *Engine) waitReady() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error)
	go func() {
		for e.stdout.Scan() {
			if e.stdout.Text() == "readyok" {
				done <- nil
				return
			}
		}
		done <- fmt.Errorf("engine closed unexpectedly")
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for readyok")
	}
}

func (e *Engine) sendCommand(cmd string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintln(e.stdin, cmd)
}

func (e *Engine) NewGame() {
	e.sendCommand("ucinewgame")
	e.sendCommand("isready")
	e.waitReady()
}

func (e *Engine) SetPosition(fen string, moves []string) {
	cmd := fmt.Sprintf("position fen %s", fen)
	if len(moves) > 0 {
		cmd += " moves " + strings.Join(moves, " ")
	}
	e.sendCommand(cmd)
}

// Search asks for a best move within the given movetime.
func (e *Engine) Search(timeMs int) (*SearchResult, error) {
	e.sendCommand(fmt.Sprintf("go movetime %d", timeMs))

	result := &SearchResult{}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeMs*2+1000)*time.Millisecond)
	defer cancel()

	done := make(chan error)
	go func() {
		for e.stdout.Scan() {
			line := e.stdout.Text()

			if strings.HasPrefix(line, "info ") {
				fields := strings.Fields(line)
				for i := 0; i < len(fields)-1; i++ {
					switch fields[i] {
					case "depth":
						fmt.Sscanf(fields[i+1], "%d", &result.Depth)
					case "cp":
						fmt.Sscanf(fields[i+1], "%d", &result.Score)
						result.IsMate = false
					case "mate":
						fmt.Sscanf(fields[i+1], "%d", &result.MateIn)
						result.IsMate = true
						if result.MateIn > 0 {
							result.Score = 100000 - result.MateIn
						} else {
							result.Score = -100000 - result.MateIn
						}
					}
				}
			}

			if strings.HasPrefix(line, "bestmove ") {
				parts := strings.Fields(line)
				if len(parts) >= 2 {
					result.BestMove = parts[1]
				}
				done <- nil
				return
			}
		}
		done <- fmt.Errorf("engine closed unexpectedly")
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		return result, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("timeout waiting for bestmove")
	}
}

func (e *Engine) Close() error {
	e.sendCommand("quit")
	time.Sleep(100 * time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- e.cmd.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(1 * time.Second):
		return e.cmd.Process.Kill()
	}
}
