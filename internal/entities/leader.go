package entities

import "github.com/atlasforge/chronicle/internal/entropy"

// Traits are the six axes that drive CountryAI and tribe behavior weights.
// Every axis lives in [0, 1].
type Traits struct {
	Aggression float64
	Caution    float64
	Diplomacy  float64
	Ambition   float64
	Freedom    float64
	Rationality float64
}

// Leader is the person steering a Tribe or Country's decisions.
type Leader struct {
	ID           ID
	Name         string
	Age          int
	YearsInPower int
	Traits       Traits
}

// RandomTraits draws a fresh, fully independent set of traits.
func RandomTraits(s *entropy.Stream) Traits {
	return Traits{
		Aggression:  s.Next(),
		Caution:     s.Next(),
		Diplomacy:   s.Next(),
		Ambition:    s.Next(),
		Freedom:     s.Next(),
		Rationality: s.Next(),
	}
}

// NewLeader creates a founding leader with random traits and no history in
// power.
func NewLeader(id ID, name string, s *entropy.Stream) Leader {
	return Leader{
		ID:     id,
		Name:   name,
		Age:    s.Int(25, 55),
		Traits: RandomTraits(s),
	}
}

const successionMaxDrift = 0.15

// Succeed produces the next leader after l dies. Ordinarily the heir's
// traits drift from the predecessor's by up to successionMaxDrift per axis
// (clamped to [0,1]). When unrest exceeded 70 at the moment of death, the
// new leader is a revolutionary with fully resampled traits instead — spec
// §3's Leader succession rule.
func (l Leader) Succeed(id ID, name string, unrestAtDeath float64, s *entropy.Stream) Leader {
	traits := l.Traits
	if unrestAtDeath > 70 {
		traits = RandomTraits(s)
	} else {
		traits = driftTraits(traits, s)
	}
	return Leader{
		ID:     id,
		Name:   name,
		Age:    s.Int(20, 45),
		Traits: traits,
	}
}

func driftTraits(t Traits, s *entropy.Stream) Traits {
	drift := func(v float64) float64 {
		v += s.Range(-successionMaxDrift, successionMaxDrift)
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
	return Traits{
		Aggression:  drift(t.Aggression),
		Caution:     drift(t.Caution),
		Diplomacy:   drift(t.Diplomacy),
		Ambition:    drift(t.Ambition),
		Freedom:     drift(t.Freedom),
		Rationality: drift(t.Rationality),
	}
}
