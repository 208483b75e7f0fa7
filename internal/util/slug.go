package util

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/gosimple/slug"
)

func Slugify(value string) string {
	return slug.Make(strings.TrimSpace(value))
}

// SuffixSlug returns base for n == 0 and base-n otherwise.
func SuffixSlug(base string, n int) string {
	if n <= 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// TitleCase upper-cases the first letter of every space separated word.
func TitleCase(value string) string {
	words := strings.Fields(value)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
