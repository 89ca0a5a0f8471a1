package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/metrics"
)

// Recorder 异步写交互流水：调用方只做校验与入队，写入失败只记日志，不回传。
// 队列满时丢弃新记录，保证上报永远不阻塞取数。
type Recorder struct {
	ledger  *Ledger
	queue   chan core.InteractionRecord
	timeout time.Duration
	log     zerolog.Logger

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewRecorder 启动一个后台写入 worker。buffer <= 0 时为 256。
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRecorder(l *Ledger, buffer int, timeout time.Duration, logger zerolog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	r := &Recorder{
		ledger:  l,
		queue:   make(chan core.InteractionRecord, buffer),
		timeout: timeout,
		log:     logger.With().Str("component", "recorder").Logger(),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Record 校验并入队一条交互；只有入参错误会返回 error。
func (r *Recorder) Record(userID, itemID string, kind core.InteractionKind) error {
	if userID == "" || itemID == "" {
		return core.InvalidInput(core.ModuleLedger, "user id and item id are required")
	}
	if kind.Weight() == 0 {
		return core.InvalidInput(core.ModuleLedger, "unknown interaction kind "+string(kind))
	}

	rec := core.InteractionRecord{UserID: userID, ItemID: itemID, Kind: kind, At: r.ledger.Now()}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		metrics.RecorderEvents.WithLabelValues("dropped").Inc()
		r.log.Warn().Str("user_id", userID).Str("item_id", itemID).Msg("recorder closed, interaction dropped")
		return nil
	}
	select {
	case r.queue <- rec:
		metrics.RecorderQueueDepth.Set(float64(len(r.queue)))
	default:
		metrics.RecorderEvents.WithLabelValues("dropped").Inc()
		r.log.Warn().Str("user_id", userID).Str("item_id", itemID).Str("kind", string(kind)).Msg("recorder queue full, interaction dropped")
	}
	return nil
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for rec := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		_, err := r.ledger.Append(ctx, rec)
		cancel()
		metrics.RecorderQueueDepth.Set(float64(len(r.queue)))
		if err != nil {
			metrics.RecorderEvents.WithLabelValues("failed").Inc()
			r.log.Error().Err(err).Str("user_id", rec.UserID).Str("item_id", rec.ItemID).Str("kind", string(rec.Kind)).Msg("write interaction failed")
			continue
		}
		metrics.RecorderEvents.WithLabelValues("written").Inc()
	}
}

// Close 停止接收并等待队列写完。
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
	return nil
}
