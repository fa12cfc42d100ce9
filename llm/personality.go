package llm

import "strings"

// Mood is guessed from the wording of a message and shapes the reply.
type Mood string

const (
	Neutral Mood = "neutral"
	Sad     Mood = "sad"
	Angry   Mood = "angry"
	Hyped   Mood = "hyped"
	Rushed  Mood = "rushed"
)

// Verbosity levels.
const (
	VerbosityLow    = "low"
	VerbosityNormal = "normal"
	VerbosityHigh   = "high"
)

// Speed modes. slow_safe caps chat replies.
const (
	SpeedNormal   = "normal"
	SpeedFast     = "fast"
	SpeedSlowSafe = "slow_safe"
)

// Settings tune a rule-based reply.
type Settings struct {
	Verbosity string `json:"verbosity"`
	Humor     bool   `json:"humor"`
	SpeedMode string `json:"speedMode"`
}

// checked in this order
var moodCues = []struct {
	mood Mood
	cues []string
}{
	{Angry, []string{"angry", "furious", "hate", "annoyed", "wtf", "pissed"}},
	{Sad, []string{"sad", "depressed", "lonely", "upset", "crying", "heartbroken"}},
	{Rushed, []string{"asap", "quick", "hurry", "urgent", "right now"}},
	{Hyped, []string{"!!!", "hyped", "let's go", "lets go", "awesome", "🔥"}},
}

// DetectMood returns the first mood whose cue appears in text.
func DetectMood(text string) Mood {
	t := strings.ToLower(text)
	for _, m := range moodCues {
		for _, c := range m.cues {
			if strings.Contains(t, c) {
				return m.mood
			}
		}
	}
	return Neutral
}

// AdjustSettings maps a mood to reply settings.
func AdjustSettings(m Mood) Settings {
	switch m {
	case Sad:
		return Settings{Verbosity: VerbosityHigh, SpeedMode: SpeedNormal}
	case Angry:
		return Settings{Verbosity: VerbosityLow, SpeedMode: SpeedSlowSafe}
	case Hyped:
		return Settings{Verbosity: VerbosityNormal, Humor: true, SpeedMode: SpeedFast}
	case Rushed:
		return Settings{Verbosity: VerbosityLow, SpeedMode: SpeedFast}
	default:
		return Settings{Verbosity: VerbosityNormal, SpeedMode: SpeedNormal}
	}
}

// Prefix opens the reply.
func Prefix(m Mood) string {
	switch m {
	case Sad:
		return "💙 I'm here for you. "
	case Angry:
		return "Okay, let's sort this out. "
	case Hyped:
		return "🔥 Love the energy! "
	case Rushed:
		return "⚡ "
	default:
		return ""
	}
}
