package text

// defaultStopwords is the built-in English stop-word list. Function words
// only; sentiment-bearing vocabulary must never appear here.
var defaultStopwords = []string{
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can",
	"had", "her", "was", "one", "our", "out", "day", "get", "has", "him",
	"his", "how", "man", "new", "now", "old", "see", "two", "way", "who",
	"its", "did", "yes", "your", "with", "this", "that", "they", "them",
	"then", "than", "there", "their", "these", "those", "have", "from",
	"will", "would", "could", "should", "been", "being", "were", "what",
	"when", "where", "which", "while", "about", "after", "before", "into",
	"onto", "over", "under", "again", "also", "because", "between", "both",
	"each", "other", "some", "such", "only", "same", "very", "more", "most",
	"much", "many", "made", "make", "does", "doing", "done", "here", "just",
	"like", "must", "please", "shall", "upon", "within", "without",
}
