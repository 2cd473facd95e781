package assets

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AssetID uuid.UUID

func NewAssetID() AssetID { return AssetID(uuid.New()) }

func (id AssetID) String() string { return uuid.UUID(id).String() }

var ErrLoaderClosed = errors.New("loader closed")

type ModelRequest struct {
	Name string
	Path string
}

type ModelResult struct {
	ID     AssetID
	Name   string
	Path   string
	Meshes []core.MeshData
	Err    error
}

type TextureResult struct {
	ID    AssetID
	Path  string
	Image *image.RGBA
	Err   error
}

// Loader decodes assets off the main thread. Each call blocks until its batch is
// done; results come back in request order.
type Loader struct {
	pool    worker.DynamicWorkerPool
	log     *zap.SugaredLogger
	workers int
	taskID  int
	closed  bool
}

func NewLoader(workers int, log *zap.SugaredLogger) *Loader {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Loader{
		pool:    worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
		log:     log,
		workers: workers,
	}
}

// Close terminates every worker goroutine. The pool's own Stop can leave a
// worker parked when it consumes another worker's stop id, so each worker is
// first pinned by a task that exits its goroutine once all are pinned.
func (l *Loader) Close() {
	if l.closed {
		return
	}
	l.closed = true

	var pinned sync.WaitGroup
	pinned.Add(l.workers)
	for i := 0; i < l.workers; i++ {
		l.pool.SubmitTask(worker.Task{
			ID: l.nextID(),
			Do: func() (any, error) {
				pinned.Done()
				pinned.Wait()
				runtime.Goexit()
				return nil, nil
			},
		})
	}
	pinned.Wait()
	l.pool.Stop()
}

func (l *Loader) nextID() int {
	id := l.taskID
	l.taskID++
	return id
}

// submit runs fn on the pool. A panic inside fn is stored in *errp instead of
// taking the process down.
func (l *Loader) submit(wg *sync.WaitGroup, errp *error, fn func()) {
	if l.closed {
		*errp = ErrLoaderClosed
		return
	}
	wg.Add(1)
	l.pool.SubmitTask(worker.Task{
		ID: l.nextID(),
		Do: func() (any, error) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					*errp = fmt.Errorf("panic: %v", r)
				}
			}()
			fn()
			return nil, nil
		},
	})
}

// LoadModels imports every request in parallel. A failed import yields a result
// with Err set and no meshes.
func (l *Loader) LoadModels(reqs []ModelRequest) []ModelResult {
	results := make([]ModelResult, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		slot := &results[i]
		*slot = ModelResult{ID: NewAssetID(), Name: req.Name, Path: req.Path}
		l.submit(&wg, &slot.Err, func() {
			start := time.Now()
			slot.Meshes, slot.Err = ImportScene(slot.Path)
			if slot.Err == nil {
				l.log.Debugf("imported %s (%d meshes) in %v", slot.Path, len(slot.Meshes), time.Since(start))
			}
		})
	}
	wg.Wait()

	for _, r := range results {
		if r.Err != nil {
			l.log.Warnf("model %s: %v", r.Name, r.Err)
		}
	}
	return results
}

// LoadTextures decodes each distinct path once. Empty paths are ignored.
func (l *Loader) LoadTextures(paths []string) map[string]*TextureResult {
	out := make(map[string]*TextureResult)
	var wg sync.WaitGroup
	for _, p := range paths {
		if p == "" || out[p] != nil {
			continue
		}
		res := &TextureResult{ID: NewAssetID(), Path: p}
		out[p] = res
		l.submit(&wg, &res.Err, func() {
			res.Image, res.Err = LoadTexture(res.Path, FormatAuto)
		})
	}
	wg.Wait()

	for _, r := range out {
		if r.Err != nil {
			l.log.Warnf("texture %s: %v", r.Path, r.Err)
		}
	}
	return out
}
