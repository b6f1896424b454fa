package scorer

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"ats-match-go/internal/parser"
)

const (
	// maxVocabularyTerms 词汇表上限，按文档频率截取
	maxVocabularyTerms = 500
	// ngram范围：一元到三元
	minNGram = 1
	maxNGram = 3
)

// tfidfTokens 规范化、剔除停用词后的词序列
func tfidfTokens(text string) []string {
	fields := strings.Fields(parser.CleanText(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if isStopWord(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// ngrams 从词序列生成n-gram词项
func ngrams(tokens []string, n int) []string {
	if len(tokens) < n {
		return nil
	}
	grams := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams = append(grams, strings.Join(tokens[i:i+n], " "))
	}
	return grams
}

// termCounts 统计一篇文档中全部1-3元词项的出现次数
func termCounts(tokens []string) map[string]float64 {
	counts := make(map[string]float64)
	for n := minNGram; n <= maxNGram; n++ {
		for _, gram := range ngrams(tokens, n) {
			counts[gram]++
		}
	}
	return counts
}

// buildVocabulary 基于两篇文档的词项构建词汇表
// 按文档频率降序截取前500项，频率相同时按字典序保证确定性
func buildVocabulary(docs []map[string]float64) []string {
	df := make(map[string]int)
	for _, doc := range docs {
		for term := range doc {
			df[term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > maxVocabularyTerms {
		terms = terms[:maxVocabularyTerms]
	}
	return terms
}

// tfidfVector 按词汇表构建TF-IDF向量并做L2归一化
// idf采用平滑形式 ln((1+n)/(1+df))+1，与常见实现一致
func tfidfVector(counts map[string]float64, vocabulary []string, df map[string]int, numDocs int) []float64 {
	vec := make([]float64, len(vocabulary))
	for i, term := range vocabulary {
		tf := counts[term]
		if tf == 0 {
			continue
		}
		idf := math.Log(float64(1+numDocs)/float64(1+df[term])) + 1
		vec[i] = tf * idf
	}

	norm := floats.Norm(vec, 2)
	if norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}

// Similarity 计算两篇文本的TF-IDF余弦相似度，取值[0,1]
// 词汇表退化（如剔除停用词后为空）时返回0而不是报错
func Similarity(textA, textB string) float64 {
	countsA := termCounts(tfidfTokens(textA))
	countsB := termCounts(tfidfTokens(textB))

	docs := []map[string]float64{countsA, countsB}
	vocabulary := buildVocabulary(docs)
	if len(vocabulary) == 0 {
		return 0
	}

	df := make(map[string]int)
	for _, doc := range docs {
		for term := range doc {
			df[term]++
		}
	}

	vecA := tfidfVector(countsA, vocabulary, df, len(docs))
	vecB := tfidfVector(countsB, vocabulary, df, len(docs))

	normA := floats.Norm(vecA, 2)
	normB := floats.Norm(vecB, 2)
	if normA == 0 || normB == 0 {
		return 0
	}

	// 向量已L2归一化，点积即余弦相似度
	sim := floats.Dot(vecA, vecB)
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
