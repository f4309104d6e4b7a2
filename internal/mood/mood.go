// Package mood picks the answer tone for a message and detects questions
// about the assistant itself.
package mood

import (
	"fmt"
	"strings"
	"unicode"
)

// Mode is the tone of an answer.
type Mode string

const (
	Serious  Mode = "serious"
	Fun      Mode = "fun"
	SuperFun Mode = "super-fun"
	Relaxed  Mode = "relaxed"
)

// keywords match as substrings; words only as whole tokens, for entries that
// are also prefixes of everyday words (meme / memeriksa).
type rule struct {
	mode     Mode
	keywords []string
	words    []string
}

// rules are checked in order; the first family with a matching keyword wins.
var rules = []rule{
	{SuperFun, []string{"ngakak", "wkwk", "receh", "kocak", "lawak", "absurd"}, []string{"meme", "memes"}},
	{Fun, []string{"lucu", "jokes", "joke", "gombal", "bercanda", "candaan", "pantun", "haha"}, nil},
	{Serious, []string{
		"hukum", "analisis", "ilmiah", "skripsi", "jurnal", "penelitian", "undang-undang",
		"medis", "diagnosa", "keuangan", "investasi", "pajak", "kontrak",
	}, nil},
}

var selfReferenceKeywords = []string{
	"siapa kamu", "kamu siapa", "siapa namamu", "nama kamu", "namamu siapa",
	"siapa yang membuat", "siapa pembuat", "siapa yang buat", "dibuat oleh siapa",
	"kamu ai apa", "model apa", "pakai gpt", "chatgpt", "openai",
	"who are you", "your name", "who made you", "who created you",
}

// Classify returns the mode for text. Matching is case-insensitive substring.
func Classify(text string) Mode {
	lower := strings.ToLower(text)
	tokens := tokenize(lower)
	for _, r := range rules {
		if containsAny(lower, r.keywords) || hasWord(tokens, r.words) {
			return r.mode
		}
	}
	return Relaxed
}

// IsSelfReference reports whether text asks about the assistant's identity.
func IsSelfReference(text string) bool {
	return containsAny(strings.ToLower(text), selfReferenceKeywords)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func tokenize(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		out[f] = struct{}{}
	}
	return out
}

func hasWord(tokens map[string]struct{}, words []string) bool {
	for _, w := range words {
		if _, ok := tokens[w]; ok {
			return true
		}
	}
	return false
}

var instructions = map[Mode]string{
	Serious: `Kamu adalah AI profesional dan serius.
Jawaban formal, jelas, dan sistematis.
Gunakan informasi pencarian jika ada.
Jangan bilang kamu tidak bisa akses internet.`,
	Fun: `Kamu adalah AI santai dan fun.
Boleh bercanda ringan dan gaya ngobrol.
Tetap informatif.
Gunakan informasi pencarian jika ada.
Jangan bilang kamu tidak bisa akses internet.`,
	SuperFun: `Kamu adalah AI yang super kocak dan heboh.
Jawab dengan gaya lucu, boleh lebay, pakai humor receh.
Fakta tetap harus benar.
Gunakan informasi pencarian jika ada.
Jangan bilang kamu tidak bisa akses internet.`,
	Relaxed: `Kamu adalah AI pintar dan santai.
Jawaban natural seperti teman ngobrol.
Boleh sedikit humor ringan jika cocok.
Gunakan informasi pencarian jika ada.
Jangan bilang kamu tidak bisa akses internet.`,
}

// Instructions returns the system instructions for mode.
func Instructions(mode Mode) string {
	if s, ok := instructions[mode]; ok {
		return s
	}
	return instructions[Relaxed]
}

// Persona is the identity the assistant discloses.
type Persona struct {
	Name      string
	Developer string
}

// IdentityClause tells the model who it is and forbids naming the upstream provider.
func (p Persona) IdentityClause() string {
	return fmt.Sprintf(
		"Nama kamu adalah %s, dikembangkan oleh %s. "+
			"Jika ditanya tentang identitasmu, jawab dengan nama tersebut. "+
			"Jangan pernah menyebut penyedia model, API, atau perusahaan lain sebagai pembuatmu.",
		p.Name, p.Developer,
	)
}

// SystemPrompt combines the mode instructions with the identity clause when
// the message asks about the assistant.
func (p Persona) SystemPrompt(mode Mode, message string) string {
	prompt := Instructions(mode)
	if IsSelfReference(message) {
		prompt += "\n" + p.IdentityClause()
	}
	return prompt
}
