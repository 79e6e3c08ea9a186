package renderer

import (
	"runtime"
	"sync"
)

// TileTask is one tile rendering job for the worker pool
type TileTask struct {
	Tile          *Tile
	PassNumber    int
	TargetSamples int
	TaskID        int
	Film          *Film
	Splats        *SplatQueue
}

// TileResult is the outcome of rendering one tile
type TileResult struct {
	TaskID int
	Stats  RenderStats
}

// WorkerPool renders tiles in parallel. Tiles have non-overlapping film
// bounds so workers write camera samples without locking; splats go through
// the shared queue.
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	numWorkers  int
	renderer    *TileRenderer
	wg          sync.WaitGroup
}

// NewWorkerPool creates a pool of numWorkers workers. Zero or negative
// means one worker per CPU.
func NewWorkerPool(renderer *TileRenderer, maxTiles, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{
		taskQueue:   make(chan TileTask, maxTiles),
		resultQueue: make(chan TileResult, maxTiles),
		numWorkers:  numWorkers,
		renderer:    renderer,
	}
}

// Start launches the workers
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run()
	}
}

// Stop shuts the pool down after all submitted tasks finish
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// SubmitTask queues a tile for rendering
func (wp *WorkerPool) SubmitTask(task TileTask) {
	wp.taskQueue <- task
}

// GetResult blocks until a tile finishes
func (wp *WorkerPool) GetResult() (TileResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// NumWorkers returns the worker count
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

func (wp *WorkerPool) run() {
	defer wp.wg.Done()
	for task := range wp.taskQueue {
		stats := wp.renderer.RenderTileBounds(
			task.Tile.Bounds, task.Film, task.Splats, task.Tile.Sampler, task.TargetSamples)
		wp.resultQueue <- TileResult{TaskID: task.TaskID, Stats: stats}
	}
}
