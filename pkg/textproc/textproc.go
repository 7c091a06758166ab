// Package textproc содержит токенизацию, извлечение ключевых слов и частотные подсчёты,
// которые используют эмбеддер, классификатор и генератор тегов.
package textproc

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	nonWord   = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	wordToken = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)
)

// keywordStopWords — стоп-слова для извлечения ключевых слов.
var keywordStopWords = toSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with",
	"by", "is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
	"do", "does", "did", "will", "would", "could", "should", "may", "might", "must",
	"can", "this", "that", "these", "those", "i", "you", "he", "she", "it", "we", "they",
)

// englishStopWords — расширенный словарь для векторизаторов.
var englishStopWords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an", "and", "any",
	"are", "as", "at", "be", "because", "been", "before", "being", "below", "between", "both",
	"but", "by", "can", "could", "did", "do", "does", "doing", "down", "during", "each", "else",
	"few", "for", "from", "further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"herself", "him", "himself", "his", "how", "i", "if", "in", "into", "is", "it", "its",
	"itself", "just", "may", "me", "might", "more", "most", "must", "my", "myself", "no", "nor",
	"not", "now", "of", "off", "on", "once", "only", "or", "other", "our", "ours", "ourselves",
	"out", "over", "own", "same", "she", "should", "so", "some", "such", "than", "that", "the",
	"their", "theirs", "them", "themselves", "then", "there", "these", "they", "this", "those",
	"through", "to", "too", "under", "until", "up", "very", "was", "we", "were", "what", "when",
	"where", "which", "while", "who", "whom", "why", "will", "with", "would", "you", "your",
	"yours", "yourself", "yourselves",
)

// ExtractKeywords приводит текст к нижнему регистру, заменяет не-словесные символы пробелами,
// отбрасывает стоп-слова и токены длиной ≤ 2 и удаляет дубликаты с сохранением порядка.
func ExtractKeywords(text string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), " ")

	seen := make(map[string]struct{})
	keywords := make([]string, 0)
	for _, word := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		if _, stop := keywordStopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}

	return keywords
}

// Tokenize возвращает токены из двух и более словесных символов в нижнем регистре без стоп-слов.
func Tokenize(text string) []string {
	raw := wordToken.FindAllString(strings.ToLower(text), -1)

	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := englishStopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}

	return tokens
}

// Count — элемент частотного словаря.
type Count struct {
	Value string
	Count int
}

// MostCommon считает вхождения и возвращает не более n самых частых значений.
// При равной частоте раньше идёт значение, встретившееся первым. n <= 0 — без ограничения.
func MostCommon(values []string, n int) []Count {
	index := make(map[string]int, len(values))
	counts := make([]Count, 0)

	for _, v := range values {
		if i, ok := index[v]; ok {
			counts[i].Count++
			continue
		}
		index[v] = len(counts)
		counts = append(counts, Count{Value: v, Count: 1})
	}

	slices.SortStableFunc(counts, func(a, b Count) int {
		return cmp.Compare(b.Count, a.Count)
	})

	if n > 0 && n < len(counts) {
		counts = counts[:n]
	}

	return counts
}

// Values возвращает значения в порядке подсчёта.
func Values(counts []Count) []string {
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = c.Value
	}
	return out
}

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
