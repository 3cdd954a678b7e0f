package insights

import (
	"math"
	"math/rand"
	"sync"
)

// Channels are the placeholder acquisition channels, in presentation order.
var Channels = []string{"Organic Search", "Direct", "Social", "Referral"}

// Float64Source yields uniform values in [0, 1).
type Float64Source interface {
	Float64() float64
}

// LockedSource is a seeded math/rand source safe for concurrent requests.
type LockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLockedSource seeds a source; equal seeds replay the same sequence.
func NewLockedSource(seed int64) *LockedSource {
	return &LockedSource{rnd: rand.New(rand.NewSource(seed))}
}

// Float64 implements Float64Source.
func (s *LockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// ChannelShare is one channel's slice of a page's users.
type ChannelShare struct {
	Channel string
	Users   int64
	Percent float64
}

// SplitChannels divides totalUsers across Channels with random percentages. The split is
// not attribution data. Users always sum to totalUsers; rounding drift lands on the first channel.
func SplitChannels(totalUsers int64, src Float64Source) []ChannelShare {
	shares := make([]ChannelShare, len(Channels))
	for i, name := range Channels {
		shares[i].Channel = name
	}
	if totalUsers <= 0 {
		return shares
	}

	remaining := 100.0
	var assigned int64
	for i := range shares {
		var pct float64
		if i == len(shares)-1 {
			pct = round(remaining, 1)
		} else {
			upper := remaining - float64(len(shares)-i-1)*5
			pct = round(uniform(src, 10, upper), 1)
			remaining -= pct
		}
		users := int64(math.RoundToEven(float64(totalUsers) * pct / 100))
		shares[i].Percent = pct
		shares[i].Users = users
		assigned += users
	}
	shares[0].Users += totalUsers - assigned
	return shares
}

func uniform(src Float64Source, a, b float64) float64 {
	return a + (b-a)*src.Float64()
}
