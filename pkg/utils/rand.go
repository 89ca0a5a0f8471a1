package utils

import (
	"math/rand"
	"sync"
	"time"
)

// Rand 是可注入的随机源：生产使用时间种子，测试使用固定种子以固定抖动与打散结果。
type Rand interface {
	Intn(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// LockedRand 是并发安全的 *rand.Rand 包装。
type LockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRand 用给定种子创建随机源。
func NewRand(seed int64) *LockedRand {
	return &LockedRand{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // 打散与抖动不需要密码学随机
}

// NewTimeRand 使用当前时间作为种子。
func NewTimeRand() *LockedRand {
	return NewRand(time.Now().UnixNano())
}

func (r *LockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *LockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *LockedRand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(n, swap)
}
