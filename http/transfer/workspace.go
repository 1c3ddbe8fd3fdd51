package transfer

import (
	"context"

	"github.com/jackc/puddle/v2"
	"github.com/pkg/errors"
)

const DefaultWorkspaces = 16

// Workspaces is a bounded pool of scratch buffers used while encoding bodies.
// Acquire never waits: an exhausted pool yields [ErrDeferred].
type Workspaces struct {
	pool *puddle.Pool[[]byte]
}

// NewWorkspaces creates count buffers of size bytes up front.
func NewWorkspaces(count int32, size int) (*Workspaces, error) {
	if size < 1 {
		return nil, errors.Wrapf(ErrInvalidBlockSize, "got %d", size)
	}

	pool, err := puddle.NewPool(&puddle.Config[[]byte]{
		Constructor: func(ctx context.Context) ([]byte, error) {
			return make([]byte, size), nil
		},
		Destructor: func([]byte) {},
		MaxSize:    count,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating workspace pool")
	}

	// TryAcquire only hands out idle resources, so fill the pool now.
	for range count {
		if err := pool.CreateResource(context.Background()); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "creating workspace")
		}
	}

	return &Workspaces{pool: pool}, nil
}

// Workspace is an acquired scratch buffer. Release it when done.
type Workspace struct {
	res *puddle.Resource[[]byte]
}

func (w *Workspace) Bytes() []byte { return w.res.Value() }

func (w *Workspace) Release() { w.res.Release() }

func (ws *Workspaces) Acquire() (*Workspace, error) {
	res, err := ws.pool.TryAcquire(context.Background())
	if err != nil {
		if errors.Is(err, puddle.ErrNotAvailable) {
			return nil, errors.Wrap(ErrDeferred, "no idle workspace")
		}
		return nil, errors.Wrap(err, "acquiring workspace")
	}
	return &Workspace{res: res}, nil
}

// Idle returns the number of buffers ready to be acquired.
func (ws *Workspaces) Idle() int32 { return ws.pool.Stat().IdleResources() }

func (ws *Workspaces) Close() { ws.pool.Close() }
