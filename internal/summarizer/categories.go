package summarizer

import "strings"

// Category is one fixed analytical section of a transcript summary.
type Category struct {
	Name     string
	Key      string
	Guidance string
}

func newCategory(name, guidance string) Category {
	return Category{
		Name:     name,
		Key:      strings.ToLower(strings.ReplaceAll(name, " ", "_")),
		Guidance: guidance,
	}
}

var categories = []Category{
	newCategory("Financial Performance", "key financial metrics or statements about the company’s recent performance"),
	newCategory("Market Dynamics", "any commentary on market trends, demand shifts, competition, etc."),
	newCategory("Expansion Plans", "information on the company’s plans for growth or expansion"),
	newCategory("Environmental Risks", "references to environmental issues, sustainability, or ESG concerns"),
	newCategory("Regulatory or Policy Changes", "information on recent or upcoming regulatory or policy changes affecting the company"),
}

// Categories returns a copy of the summary sections in prompt order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}
