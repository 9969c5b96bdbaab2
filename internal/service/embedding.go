package service

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions must match the vector column in recipe_embeddings.
const EmbeddingDimensions = 64

// GenerateEmbedding returns a deterministic hashed bag-of-words embedding for text,
// normalised to unit length. Empty text yields the zero vector.
func GenerateEmbedding(text string) pgvector.Vector {
	vec := make([]float32, EmbeddingDimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		sum := h.Sum32()
		sign := float32(1)
		if sum&(1<<31) != 0 {
			sign = -1
		}
		vec[sum%EmbeddingDimensions] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return pgvector.NewVector(vec)
}

// RecipeEmbeddingText is the text a recipe is indexed under.
func RecipeEmbeddingText(title, description string, ingredients []string, tags []string) string {
	parts := []string{title, description}
	parts = append(parts, ingredients...)
	parts = append(parts, tags...)
	return strings.Join(parts, " ")
}
