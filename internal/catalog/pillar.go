package catalog

import "strings"

// Pillar is a learning track. Game ids are prefixed with their pillar.
type Pillar string

const (
	PillarFinance        Pillar = "finance"
	PillarBrain          Pillar = "brain"
	PillarUVLS           Pillar = "uvls"
	PillarDCOS           Pillar = "dcos"
	PillarMoral          Pillar = "moral"
	PillarAI             Pillar = "ai"
	PillarHealthMale     Pillar = "health-male"
	PillarHealthFemale   Pillar = "health-female"
	PillarEHE            Pillar = "ehe"
	PillarCRGC           Pillar = "crgc"
	PillarSustainability Pillar = "sustainability"
)

// AllPillars returns every known pillar in display order.
func AllPillars() []Pillar {
	return []Pillar{
		PillarFinance, PillarBrain, PillarUVLS, PillarDCOS, PillarMoral, PillarAI,
		PillarHealthMale, PillarHealthFemale, PillarEHE, PillarCRGC, PillarSustainability,
	}
}

var pillarNames = map[Pillar]string{
	PillarFinance:        "Financial Literacy",
	PillarBrain:          "Brain Health",
	PillarUVLS:           "Life Skills & Values",
	PillarDCOS:           "Digital Citizenship",
	PillarMoral:          "Moral Values",
	PillarAI:             "AI for All",
	PillarHealthMale:     "Health (Boys)",
	PillarHealthFemale:   "Health (Girls)",
	PillarEHE:            "Entrepreneurship",
	PillarCRGC:           "Civic Responsibility",
	PillarSustainability: "Sustainability",
}

// DisplayName returns the human-readable pillar name.
func (p Pillar) DisplayName() string {
	if name, ok := pillarNames[p]; ok {
		return name
	}
	return string(p)
}

// Valid reports whether p is a known pillar.
func (p Pillar) Valid() bool {
	_, ok := pillarNames[p]
	return ok
}

// PillarOf derives the pillar from a game id such as "finance-kids-12".
// Longer pillar names win so "health-male-..." is not read as "health".
func PillarOf(gameID string) (Pillar, bool) {
	var best Pillar
	for _, p := range AllPillars() {
		if strings.HasPrefix(gameID, string(p)+"-") && len(p) > len(best) {
			best = p
		}
	}
	return best, best != ""
}
