package comments

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// English stopwords.
var stopwords = set(
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your",
	"yours", "yourself", "yourselves", "he", "him", "his", "himself", "she",
	"her", "hers", "herself", "it", "its", "itself", "they", "them", "their",
	"theirs", "themselves", "what", "which", "who", "whom", "this", "that",
	"these", "those", "am", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "having", "do", "does", "did", "doing", "a", "an",
	"the", "and", "but", "if", "or", "because", "as", "until", "while", "of",
	"at", "by", "for", "with", "about", "against", "between", "into",
	"through", "during", "before", "after", "above", "below", "to", "from",
	"up", "down", "in", "out", "on", "off", "over", "under", "again",
	"further", "then", "once", "here", "there", "when", "where", "why", "how",
	"all", "any", "both", "each", "few", "more", "most", "other", "some",
	"such", "no", "nor", "not", "only", "own", "same", "so", "than", "too",
	"very", "s", "t", "can", "will", "just", "don", "should", "now", "d", "ll",
	"m", "o", "re", "ve", "y", "ain", "aren", "couldn", "didn", "doesn",
	"hadn", "hasn", "haven", "isn", "ma", "mightn", "mustn", "needn", "shan",
	"shouldn", "wasn", "weren", "won", "wouldn", "im", "its", "u", "ur",
)

var negations = set(
	"not", "no", "never", "nothing", "nobody", "none", "neither", "nor",
	"n't", "dont", "don't", "cant", "can't", "wont", "won't", "isnt", "isn't",
	"wasnt", "wasn't", "didnt", "didn't", "doesnt", "doesn't", "aint", "ain't",
	"without", "hardly",
)

// Word valence on a -4..4 scale.
var valence = map[string]float64{
	"amazing": 2.8, "awesome": 3.1, "beautiful": 2.9, "best": 3.2, "better": 1.9,
	"brilliant": 2.8, "cool": 1.3, "cute": 2.0, "enjoy": 2.2, "enjoyed": 2.3,
	"epic": 2.5, "excellent": 2.7, "excited": 2.2, "exciting": 2.2, "fantastic": 2.6,
	"fun": 2.3, "funny": 1.9, "glad": 2.0, "good": 1.9, "great": 3.1,
	"happy": 2.7, "hilarious": 1.7, "incredible": 2.5, "interesting": 1.7, "like": 1.5,
	"liked": 1.8, "love": 3.2, "loved": 2.9, "lovely": 2.8, "loving": 2.9,
	"masterpiece": 3.0, "nice": 1.8, "perfect": 2.7, "precious": 2.7, "pretty": 2.2,
	"proud": 2.1, "queen": 1.2, "sweet": 2.0, "thank": 1.5, "thanks": 1.9,
	"wholesome": 2.4, "win": 2.8, "wonderful": 2.7, "wow": 2.8, "yay": 2.4,
	"lol": 1.8, "lmao": 2.0, "haha": 2.0, "finally": 0.9, "hope": 1.9,
	"favorite": 2.0, "favourite": 2.0, "king": 1.2, "legend": 1.6, "goat": 1.4,
	"angry": -2.3, "annoying": -1.7, "awful": -2.0, "bad": -2.5, "boring": -1.3,
	"confused": -1.3, "confusing": -0.9, "cringe": -1.8, "cry": -2.1, "crying": -2.1,
	"dead": -3.3, "die": -2.9, "disappointed": -1.9, "disappointing": -2.2, "disgusting": -2.4,
	"dumb": -2.3, "evil": -3.4, "fail": -2.5, "hate": -2.7, "hated": -3.2,
	"horrible": -2.5, "hurt": -2.4, "kill": -3.7, "lame": -1.8, "mad": -2.2,
	"mess": -1.5, "miss": -0.6, "pain": -2.3, "painful": -1.9, "poor": -2.1,
	"rushed": -1.2, "sad": -2.1, "scary": -2.2, "sick": -2.3, "stupid": -2.4,
	"terrible": -2.1, "trash": -2.7, "ugly": -2.3, "upset": -1.6, "waste": -1.8,
	"worse": -2.1, "worst": -3.1, "wrong": -2.1, "ugh": -1.8, "wtf": -2.8,
}
