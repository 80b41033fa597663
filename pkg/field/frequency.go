package field

// FrequencyMap assigns a semantic frequency to keyword tokens. Heavier
// concepts carry higher frequencies; unknown tokens default to 1.0. A
// wave's frequency is the mean over its keywords, so waves about related
// concepts land close together and interfere more strongly.
type FrequencyMap map[string]float64

const defaultKeywordFrequency = 1.0

// DefaultFrequencyMap covers the seed vocabulary; deployments can extend
// or replace it through configuration.
func DefaultFrequencyMap() FrequencyMap {
	return FrequencyMap{
		"coffee": 2.0, "morning": 2.5, "ritual": 2.3,
		"guitar": 3.0, "practice": 3.2, "chords": 3.5,
		"career": 4.0, "promotion": 4.2, "work": 4.1,
		"sarah": 5.0, "friend": 5.2, "help": 5.1,
	}
}

// FrequencyFor returns the mean frequency of keywords, or 1.0 for an
// empty set.
func (m FrequencyMap) FrequencyFor(keywords []string) float64 {
	if len(keywords) == 0 {
		return defaultKeywordFrequency
	}
	var sum float64
	for _, k := range keywords {
		if f, ok := m[k]; ok {
			sum += f
		} else {
			sum += defaultKeywordFrequency
		}
	}
	return sum / float64(len(keywords))
}
