package resume

// Tone selects the writing style of the optimization prompts
type Tone string

const (
	ToneExecutive Tone = "executive"
	ToneDisruptor Tone = "disruptor"
	ToneHuman     Tone = "human"
)

var toneGuides = map[Tone]string{
	ToneExecutive: "Use high-level strategic language.\n" +
		"Preferred verbs: Spearheaded, Orchestrated, Leveraged, Directed, Championed\n" +
		"Focus on leadership, strategy, and organizational impact.",
	ToneDisruptor: "Use punchy, action-oriented language.\n" +
		"Preferred verbs: Built, Scaled, Accelerated, Disrupted, Transformed\n" +
		"Focus on growth, innovation, and bold achievements.",
	ToneHuman: "Use friendly, approachable language.\n" +
		"Preferred verbs: Collaborated, Supported, Mentored, Facilitated, Nurtured\n" +
		"Focus on teamwork, cultural fit, and people skills.",
}

// ParseTone maps a request value to a known tone. Matching is exact, so
// "HUMAN" or " human" fall back to executive like any unknown value.
func ParseTone(value string) Tone {
	tone := Tone(value)
	if _, ok := toneGuides[tone]; ok {
		return tone
	}
	return ToneExecutive
}

// Guide returns the instructional fragment for the tone
func (t Tone) Guide() string {
	if guide, ok := toneGuides[t]; ok {
		return guide
	}
	return toneGuides[ToneExecutive]
}
