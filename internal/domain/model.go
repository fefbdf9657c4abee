package domain

// Runware model tiers, from most capable to most economical.
const (
	ModelPremium    = "kling:2.1"
	ModelMidTier    = "pixverse:4.5"
	ModelEconomical = "seedance:1.0"
)

type modelRule struct {
	matches func(Rhyme) bool
	model   string
}

// Rules are evaluated top to bottom; the first match wins.
var modelRules = []modelRule{
	{func(r Rhyme) bool { return r.IsPremium }, ModelPremium},
	{func(r Rhyme) bool { return r.DurationSeconds > 45 }, ModelMidTier},
}

// SelectModel picks the render model for a rhyme. Premium content always
// gets the top tier; long standard rhymes get the mid tier.
func SelectModel(r Rhyme) string {
	for _, rule := range modelRules {
		if rule.matches(r) {
			return rule.model
		}
	}
	return ModelEconomical
}
