package models

// TopicSelection models the in-progress topic choice for a report draft as a
// pure value: the chosen topics in pick order plus the ad hoc custom entries
// that extend the fixed vocabulary. All transitions return a new value.
type TopicSelection struct {
	Chosen []string
	Custom []string
}

// NewTopicSelection seeds a selection from an existing report's topics,
// classifying entries outside the vocabulary for the pair as custom.
func NewTopicSelection(topics []string, category Category, subject Subject) TopicSelection {
	vocab := make(map[string]struct{})
	for _, t := range TopicVocabulary(category, subject) {
		vocab[t] = struct{}{}
	}
	sel := TopicSelection{Chosen: append([]string(nil), topics...)}
	for _, t := range topics {
		if _, ok := vocab[t]; !ok {
			sel.Custom = append(sel.Custom, t)
		}
	}
	return sel
}

// Toggle flips membership of topic in the chosen set, preserving order.
func (s TopicSelection) Toggle(topic string) TopicSelection {
	out := TopicSelection{Custom: s.Custom}
	removed := false
	for _, t := range s.Chosen {
		if t == topic {
			removed = true
			continue
		}
		out.Chosen = append(out.Chosen, t)
	}
	if !removed {
		out.Chosen = append(append([]string(nil), s.Chosen...), topic)
	}
	return out
}

// AddCustom appends a new custom topic and selects it. Blank input is a no-op.
func (s TopicSelection) AddCustom(topic string) TopicSelection {
	if topic == "" {
		return s
	}
	return TopicSelection{
		Chosen: append(append([]string(nil), s.Chosen...), topic),
		Custom: append(append([]string(nil), s.Custom...), topic),
	}
}

// Reset clears the selection, as happens when category or subject changes.
func (s TopicSelection) Reset() TopicSelection {
	return TopicSelection{}
}

// Contains reports whether topic is currently chosen.
func (s TopicSelection) Contains(topic string) bool {
	for _, t := range s.Chosen {
		if t == topic {
			return true
		}
	}
	return false
}
