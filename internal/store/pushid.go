package store

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// pushChars is the Firebase push ID alphabet, ordered by ASCII value so that
// generated keys sort lexicographically in creation order.
const pushChars = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

// PushIDGenerator produces 20-character keys compatible with Firebase push
// IDs: 8 characters encode the millisecond timestamp, 12 are random. Keys
// generated within the same millisecond increment the random suffix so
// ordering still holds.
type PushIDGenerator struct {
	mu       sync.Mutex
	now      func() time.Time
	lastTime int64
	lastRand [12]int
}

// NewPushIDGenerator creates a generator using wall-clock time.
func NewPushIDGenerator() *PushIDGenerator {
	return &PushIDGenerator{now: time.Now}
}

// newPushIDGeneratorAt creates a generator with an injectable clock for tests.
func newPushIDGeneratorAt(now func() time.Time) *PushIDGenerator {
	return &PushIDGenerator{now: now}
}

// Next returns a new push ID strictly greater than all previously returned IDs.
func (g *PushIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()

	if ms == g.lastTime {
		// Same millisecond: increment the previous random part.
		for i := 11; i >= 0; i-- {
			if g.lastRand[i] != 63 {
				g.lastRand[i]++
				break
			}
			g.lastRand[i] = 0
		}
	} else {
		for i := range g.lastRand {
			g.lastRand[i] = rand.Intn(64)
		}
	}
	g.lastTime = ms

	var b strings.Builder
	b.Grow(20)

	var ts [8]byte
	for i := 7; i >= 0; i-- {
		ts[i] = pushChars[ms%64]
		ms /= 64
	}
	b.Write(ts[:])

	for _, r := range g.lastRand {
		b.WriteByte(pushChars[r])
	}

	return b.String()
}
