package profile

import "github.com/dshills/surveysim/internal/survey"

func sentiment() *Profile {
	return &Profile{
		Name:        "sentiment",
		Kind:        KindSentiment,
		Bound:       survey.Bound{Lower: 1.0, Upper: 3.0},
		Precision:   1,
		Description: "25 questions in a 5x5 grid of levels and categories; 1.0 is low resistance, 3.0 high.",
	}
}

func sentimentWide() *Profile {
	p := sentiment()
	p.Name = "sentiment-wide"
	p.Bound = survey.Bound{Lower: 1.0, Upper: 5.0}
	p.Description = "Sentiment scores on the legacy 5-point ceiling used by the journey exports."
	return p
}

func capability() *Profile {
	return &Profile{
		Name:           "capability",
		Kind:           KindCapability,
		Bound:          survey.Bound{Lower: 1.0, Upper: 7.0},
		Precision:      2,
		HigherIsBetter: true,
		Description:    "8 dimensions with 4 constructs each, one row per construct per respondent.",
	}
}

func capabilityFive() *Profile {
	p := capability()
	p.Name = "capability-5"
	p.Bound = survey.Bound{Lower: 1.0, Upper: 5.0}
	return p
}
