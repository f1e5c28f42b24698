package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vreta/crm-api/internal/core/ports"
	"github.com/vreta/crm-api/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// ErrQueueFull is returned when the worker for a user has no room left.
var ErrQueueFull = errors.New("login recorder: queue full")

type loginEvent struct {
	userID string
	at     time.Time
}

// LoginRecorder writes lastLogin timestamps off the request path. Events for
// one user always land on the same worker, so they are applied in order.
type LoginRecorder struct {
	workers []chan loginEvent
	users   ports.UserRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewLoginRecorder creates a recorder with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewLoginRecorder(numWorkers int, users ports.UserRepository, log zerolog.Logger) *LoginRecorder {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	r := &LoginRecorder{
		workers: make([]chan loginEvent, numWorkers),
		users:   users,
		log:     log,
	}
	for i := range r.workers {
		r.workers[i] = make(chan loginEvent, channelBuffer)
	}
	return r
}

// Start launches the workers. They drain their queues and exit when ctx is
// cancelled; Wait blocks until they have.
func (r *LoginRecorder) Start(ctx context.Context) {
	for i, ch := range r.workers {
		r.wg.Add(1)
		go r.runWorker(ctx, i, ch)
	}
}

func (r *LoginRecorder) Wait() { r.wg.Wait() }

// RecordLogin never blocks: when the user's worker is saturated the event is
// dropped and ErrQueueFull returned.
func (r *LoginRecorder) RecordLogin(_ context.Context, userID string, at time.Time) error {
	idx := r.shardIndex(userID)
	select {
	case r.workers[idx] <- loginEvent{userID: userID, at: at}:
		metrics.LoginQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(r.workers[idx])))
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *LoginRecorder) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(r.workers)))
}

func (r *LoginRecorder) runWorker(ctx context.Context, id int, ch chan loginEvent) {
	defer r.wg.Done()
	depth := metrics.LoginQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			r.drain(id, ch)
			depth.Set(0)
			return
		case ev := <-ch:
			r.write(context.Background(), id, ev)
			depth.Set(float64(len(ch)))
		}
	}
}

// drain applies whatever is still buffered so a shutdown does not lose
// recent logins.
func (r *LoginRecorder) drain(id int, ch chan loginEvent) {
	for {
		select {
		case ev := <-ch:
			r.write(context.Background(), id, ev)
		default:
			return
		}
	}
}

func (r *LoginRecorder) write(ctx context.Context, id int, ev loginEvent) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := r.users.UpdateLastLogin(ctx, ev.userID, ev.at); err != nil {
		metrics.LastLoginFailuresTotal.WithLabelValues("write").Inc()
		r.log.Warn().Err(err).
			Str("user_id", ev.userID).
			Int("worker_id", id).
			Msg("last login update failed")
	}
}

var _ ports.LoginRecorder = (*LoginRecorder)(nil)
