package classify

// Keywords holds the stage-1 gate term lists. Matching is
// case-insensitive substring over title+description+company; the
// exclude list is checked first and wins.
type Keywords struct {
	Include []string
	Exclude []string
}

// DefaultKeywords returns the built-in gate lists, tuned for the
// AI & Society domain.
func DefaultKeywords() Keywords {
	return Keywords{
		Include: []string{
			"ai", "artificial intelligence", "machine learning", "ethics",
			"policy", "governance", "algorithmic", "digital", "technology",
			"responsible", "safety",
		},
		Exclude: []string{
			"software engineer", "data engineer", "devops", "backend developer",
			"frontend developer", "full stack", "mobile developer", "qa engineer",
			"database administrator", "system administrator", "network engineer",
			"sales", "marketing", "customer success", "account manager",
		},
	}
}

// withDefaults fills empty lists from DefaultKeywords.
func (k Keywords) withDefaults() Keywords {
	def := DefaultKeywords()
	if len(k.Include) == 0 {
		k.Include = def.Include
	}
	if len(k.Exclude) == 0 {
		k.Exclude = def.Exclude
	}
	return k
}
