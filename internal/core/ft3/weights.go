package ft3

// Weights tunes the keyword technique signal.
type Weights struct {
	// NameMatch is added when a term occurs in the technique name.
	NameMatch float64
	// DescriptionMatch is added when a term occurs only in the description.
	DescriptionMatch float64
	// SubTechniqueThreshold is the minimum score for a sub-technique to be
	// suggested in place of its parent.
	SubTechniqueThreshold float64
	// MaxTechniques caps the suggested techniques. Zero or less means no cap.
	MaxTechniques int
}

func DefaultWeights() Weights {
	return Weights{
		NameMatch:             3.0,
		DescriptionMatch:      1.0,
		SubTechniqueThreshold: 4.0,
		MaxTechniques:         10,
	}
}
