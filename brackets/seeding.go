package brackets

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"slices"
	"sort"

	"github.com/MichaelPain/FutHaxball-sub001/models"
)

// SeedingPolicy decides the order in which entrants are handed to a strategy.
type SeedingPolicy interface {
	Order(participants []*models.Participant) []*models.Participant
}

// Drawer is implemented by policies whose order depends on the draw being made.
// Draw returns the order for the draw named by key together with the rng seed
// it used; zero means the order is not random.
type Drawer interface {
	Draw(key string, participants []*models.Participant) ([]*models.Participant, int64)
}

const (
	SeedingAsGiven = "as_given"
	SeedingBySeed  = "by_seed"
	SeedingShuffle = "shuffle"
	// SeedingTieredShuffle sorts by seed and shuffles within tiers.
	SeedingTieredShuffle = "tiered_shuffle"
)

func ParseSeedingPolicy(name string, rngSeed int64) (SeedingPolicy, error) {
	switch name {
	case "", SeedingAsGiven:
		return AsGiven{}, nil
	case SeedingBySeed:
		return BySeed{}, nil
	case SeedingShuffle:
		return Shuffle{RNGSeed: rngSeed}, nil
	case SeedingTieredShuffle:
		return Shuffle{RNGSeed: rngSeed, Tiered: true}, nil
	}
	return nil, fmt.Errorf("unknown seeding policy %q", name)
}

// AsGiven keeps the caller's order.
type AsGiven struct{}

func (AsGiven) Order(participants []*models.Participant) []*models.Participant {
	return slices.Clone(participants)
}

// BySeed puts seeded participants first, ascending, and keeps unseeded ones in the given order.
type BySeed struct{}

func (BySeed) Order(participants []*models.Participant) []*models.Participant {
	out := slices.Clone(participants)
	sortBySeed(out)
	return out
}

// Shuffle randomizes the order.
// Order uses RNGSeed as is. Draw mixes RNGSeed with the draw key so every stage
// gets its own permutation; a zero RNGSeed draws a fresh random base instead.
// Passing a recorded draw seed back as RNGSeed to Order reproduces that draw.
// With Tiered set, seeds are sorted first and only shuffled within tiers
// (3-4, 5-8, 9-16, ...) so the top two always stay in place.
type Shuffle struct {
	RNGSeed int64
	Tiered  bool
}

func (s Shuffle) Order(participants []*models.Participant) []*models.Participant {
	return s.order(participants, s.RNGSeed)
}

func (s Shuffle) Draw(key string, participants []*models.Participant) ([]*models.Participant, int64) {
	seed := drawSeed(s.RNGSeed, key)
	return s.order(participants, seed), seed
}

func (s Shuffle) order(participants []*models.Participant, seed int64) []*models.Participant {
	out := slices.Clone(participants)
	rng := rand.New(rand.NewSource(seed))
	if s.Tiered {
		sortBySeed(out)
		tieredShuffle(out, rng)
		return out
	}
	shuffle(out, rng)
	return out
}

// drawSeed derives the rng seed of one draw from a base seed and the draw key.
func drawSeed(base int64, key string) int64 {
	if base == 0 {
		base = rand.Int63()
	}
	h := fnv.New64a()
	h.Write([]byte(key))
	seed := base ^ int64(h.Sum64())
	if seed == 0 {
		seed = base
	}
	return seed
}

func sortBySeed(ps []*models.Participant) {
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := ps[i].Seed, ps[j].Seed
		if a == 0 || b == 0 {
			return a != 0 && b == 0
		}
		return a < b
	})
}

func tieredShuffle[S ~[]E, E any](slice S, rng *rand.Rand) {
	for start := 2; start < len(slice)-1; start *= 2 {
		end := min(len(slice), 2*start)
		shuffle(slice[start:end], rng)
	}
}

func shuffle[S ~[]E, E any](slice S, rng *rand.Rand) {
	rng.Shuffle(
		len(slice),
		func(i, j int) { slice[i], slice[j] = slice[j], slice[i] },
	)
}
