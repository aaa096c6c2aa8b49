package domain

// TextPrefix marks an utterance that carries typed text instead of audio.
// Text turns skip transcription entirely.
const TextPrefix = "__TEXT__:"

// Turn is one push-to-talk interaction. It is created when capture stops,
// filled in stage by stage, and discarded after playback; nothing about it
// is persisted.
type Turn struct {
	RawAudio   []byte
	Transcript string
	Reflection string
	Synthesis  []byte
	Processed  []byte
}

// TextUtterance reports whether data is a typed text turn and, if so,
// returns the text.
func TextUtterance(data []byte) (string, bool) {
	if len(data) > len(TextPrefix) && string(data[:len(TextPrefix)]) == TextPrefix {
		return string(data[len(TextPrefix):]), true
	}
	return "", false
}
