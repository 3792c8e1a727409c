package docstore

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	suffixLen   = 5
	suffixSpace = 36 * 36 * 36 * 36 * 36
)

type idGenerator struct {
	mu     sync.Mutex
	lastMS int64
	seq    int64
	now    func() time.Time
}

var defaultIDs = &idGenerator{now: time.Now}

// GenerateUniqueID returns prefix followed by the base-36 millisecond clock and
// a five character base-36 suffix, upper-cased. Ids from one process never
// repeat within a millisecond; ids from different processes can collide with
// probability about 1 in 36^5 per millisecond.
func GenerateUniqueID(prefix string) string {
	return defaultIDs.next(prefix)
}

func (g *idGenerator) next(prefix string) string {
	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms != g.lastMS {
		g.lastMS = ms
		g.seq = rand.Int63n(suffixSpace)
	} else {
		g.seq = (g.seq + 1) % suffixSpace
	}
	seq := g.seq
	g.mu.Unlock()

	suffix := strconv.FormatInt(seq, 36)
	if len(suffix) < suffixLen {
		suffix = strings.Repeat("0", suffixLen-len(suffix)) + suffix
	}
	return prefix + strings.ToUpper(strconv.FormatInt(ms, 36)+suffix)
}
