package parser

import (
	"regexp"
	"slices"
	"strings"
)

// KeywordAction is the action signalled by the command vocabulary of a message
type KeywordAction int

const (
	KeywordNone KeywordAction = iota
	KeywordUpdate
	KeywordDelete
)

var (
	updateVocabulary = []string{"update", "change", "modify", "edit", "refine", "improve", "correct", "fix"}
	deleteVocabulary = []string{"delete", "remove", "trash", "cancel", "erase", "eliminate", "clear", "wipe"}

	// Vocabulary matches whole words and their inflections, so "changed"
	// counts but "prefix" and "changelog" do not
	updateVocabRegex = vocabularyRegex(updateVocabulary)
	deleteVocabRegex = vocabularyRegex(deleteVocabulary)

	// commandWords holds the whole vocabulary words; unlike the regexes it
	// does not match title words such as "changelog" or "editor"
	commandWords = vocabularySet(updateVocabulary, deleteVocabulary)

	// fillerWords may surround a title phrase without being part of it
	fillerWords = map[string]bool{
		"a": true, "an": true, "the": true, "my": true, "our": true, "your": true,
		"this": true, "that": true, "these": true, "those": true, "it": true,
		"task": true, "tasks": true, "todo": true, "item": true, "one": true,
		"please": true, "pls": true, "kindly": true, "can": true, "could": true,
		"would": true, "you": true, "i": true, "me": true, "want": true, "like": true,
		"need": true, "to": true, "for": true, "of": true, "and": true, "with": true,
		"called": true, "named": true, "titled": true, "about": true, "on": true,
		"in": true, "from": true, "set": true, "mark": true, "as": true, "is": true,
		"just": true, "now": true, "also": true, "its": true, "so": true,
	}
)

func vocabularyRegex(words []string) *regexp.Regexp {
	forms := make([]string, 0, len(words))
	for _, w := range words {
		if stem, ok := strings.CutSuffix(w, "e"); ok {
			forms = append(forms, stem+`(?:e|es|ed|ing)`)
		} else {
			forms = append(forms, w+`(?:s|es|ed|ing)?`)
		}
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(forms, "|") + `)\b`)
}

func vocabularySet(vocabularies ...[]string) map[string]bool {
	set := make(map[string]bool)
	for _, words := range vocabularies {
		for _, w := range words {
			set[w] = true
		}
	}
	return set
}

// MatchKeywords reports the action signalled by the command vocabulary.
// Update vocabulary is checked first, so a message containing both
// update and delete words is an update.
func MatchKeywords(message string) KeywordAction {
	switch {
	case updateVocabRegex.MatchString(message):
		return KeywordUpdate
	case deleteVocabRegex.MatchString(message):
		return KeywordDelete
	default:
		return KeywordNone
	}
}

// isNoiseWord reports whether a word is filler or a command word. Past
// tenses ("changed", "removed", "fixed") count as command words.
func isNoiseWord(word string) bool {
	if fillerWords[word] || commandWords[word] {
		return true
	}
	if stem, ok := strings.CutSuffix(word, "ed"); ok && commandWords[stem] {
		return true
	}
	if stem, ok := strings.CutSuffix(word, "d"); ok && commandWords[stem] {
		return true
	}
	return false
}

// phraseWords splits text into lower-case words with surrounding
// punctuation removed
func phraseWords(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	for i := range words {
		words[i] = strings.Trim(words[i], `.,;:!?"'()[]`)
	}
	return words
}

// ContainsPhrase reports whether the words of phrase appear as a
// contiguous run of whole words in title, ignoring case and punctuation.
// "log" is not found in "Fix login bug".
func ContainsPhrase(title, phrase string) bool {
	want := phraseWords(phrase)
	if len(want) == 0 {
		return false
	}
	have := phraseWords(title)
	for i := 0; i+len(want) <= len(have); i++ {
		if slices.Equal(have[i:i+len(want)], want) {
			return true
		}
	}
	return false
}

// TitlePhrase reduces a chat message to the phrase that names a task:
// task references and update clauses are removed, then leading and
// trailing command/filler words and punctuation are trimmed. Inner words
// are kept so multi-word titles stay contiguous. The result is lower-case.
func TitlePhrase(message string) string {
	message = StripUpdateClauses(StripTaskRefs(message))

	words := phraseWords(message)

	start, end := 0, len(words)
	for start < end && (words[start] == "" || isNoiseWord(words[start])) {
		start++
	}
	for end > start && (words[end-1] == "" || isNoiseWord(words[end-1])) {
		end--
	}

	return strings.Join(words[start:end], " ")
}
