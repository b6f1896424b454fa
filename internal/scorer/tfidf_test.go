package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityIdenticalTexts(t *testing.T) {
	text := "senior backend engineer building distributed systems with go and postgresql"
	assert.InDelta(t, 1.0, Similarity(text, text), 0.001, "相同文本的相似度应为1")
}

func TestSimilarityDisjointTexts(t *testing.T) {
	sim := Similarity(
		"professional chef specializing french cuisine pastry baking",
		"kernel driver development embedded firmware microcontrollers",
	)
	assert.InDelta(t, 0.0, sim, 0.001, "完全无关的文本相似度应接近0")
}

func TestSimilarityPartialOverlap(t *testing.T) {
	sim := Similarity(
		"python developer building machine learning pipelines",
		"looking for python engineer with machine learning background",
	)
	assert.Greater(t, sim, 0.0)
	assert.Less(t, sim, 1.0)
}

func TestSimilarityDegenerateInput(t *testing.T) {
	// 剔除停用词后词汇表为空时返回0而不是报错
	assert.Equal(t, 0.0, Similarity("", ""), "空文本应退化为0")
	assert.Equal(t, 0.0, Similarity("the and of with", "a an but very"), "纯停用词文本应退化为0")
	assert.Equal(t, 0.0, Similarity("python engineer", ""), "单侧为空应退化为0")
}

func TestSimilarityBounds(t *testing.T) {
	pairs := [][2]string{
		{"go go go", "go"},
		{"python java", "java python"},
		{"a b c", "x y z"},
	}
	for _, p := range pairs {
		sim := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, sim, 0.0)
		assert.LessOrEqual(t, sim, 1.0)
	}
}

func TestNgrams(t *testing.T) {
	tokens := []string{"deep", "learning", "models"}

	assert.Equal(t, []string{"deep", "learning", "models"}, ngrams(tokens, 1))
	assert.Equal(t, []string{"deep learning", "learning models"}, ngrams(tokens, 2))
	assert.Equal(t, []string{"deep learning models"}, ngrams(tokens, 3))
	assert.Nil(t, ngrams(tokens, 4), "n大于词数时没有n-gram")
}

func TestBuildVocabularyDeterministicOrder(t *testing.T) {
	docs := []map[string]float64{
		{"python": 2, "go": 1, "sql": 1},
		{"python": 1, "rust": 3},
	}

	first := buildVocabulary(docs)
	second := buildVocabulary(docs)
	assert.Equal(t, first, second, "词汇表构建必须是确定性的")

	// python出现在两篇文档中，文档频率最高应排在最前
	assert.Equal(t, "python", first[0])
}
