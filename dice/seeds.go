package dice

import "math/rand/v2"

// Seeds splits randomness into tiers: World drives board generation, Env drives die rolls
// and any agent randomness. A zero seed means "pick one at random".
type Seeds struct {
	World uint64 `yaml:"world" env:"WORLD"`
	Env   uint64 `yaml:"env" env:"ENV"`
}

// Resolve replaces zero seeds with random ones. Fixing only one tier allows, for example,
// a fixed map with fresh dice.
func (s Seeds) Resolve() Seeds {
	for s.World == 0 {
		s.World = rand.Uint64()
	}
	for s.Env == 0 {
		s.Env = rand.Uint64()
	}
	return s
}
