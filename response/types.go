package response

// Topic is a writing prompt with a short model-written example answer.
type Topic struct {
	Topic   string `json:"topic"`
	Example string `json:"example"`
}

// Feedback is the model's assessment of a submitted paragraph. Scores are on a
// nominal 0..10 scale each.
type Feedback struct {
	Grammar     float64  `json:"grammar"`
	Coherence   float64  `json:"coherence"`
	Vocabulary  float64  `json:"vocabulary"`
	Suggestions []string `json:"suggestions"`
}

// MaxTotal is the highest total reachable with in-range scores.
const MaxTotal = 30

// Total is grammar + coherence + vocabulary, computed on every call.
func (f Feedback) Total() float64 {
	return f.Grammar + f.Coherence + f.Vocabulary
}
