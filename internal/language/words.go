package language

// supportedLocales fixes the evaluation order so detection is deterministic.
var supportedLocales = []string{"en", "de", "fr", "es"}

// Common-word fingerprints per supported locale. Accented forms are folded
// at init so matching is diacritic-insensitive.
var localeWords = map[string][]string{
	"en": {
		"the", "and", "is", "are", "was", "were", "have", "has", "this", "that",
		"with", "for", "you", "your", "my", "our", "will", "would", "could",
		"should", "can", "not", "but", "very", "just", "been", "being", "more",
		"some", "also", "than", "only", "into", "about", "from", "they", "them",
		"their", "we", "us", "it", "its", "an", "a", "of", "to", "in", "on",
		"at", "great", "good", "best", "love", "excellent", "amazing",
		"product", "quality", "recommend", "buy", "bought", "ordered",
		"shipping", "delivery",
	},
	"de": {
		"der", "die", "das", "und", "ist", "sind", "war", "waren", "habe",
		"haben", "ein", "eine", "nicht", "auch", "noch", "mit", "bei", "sich",
		"auf", "für", "oder", "aber", "nach", "wenn", "nur", "schon", "sehr",
		"gut", "produkt", "qualität",
	},
	"fr": {
		"le", "la", "les", "et", "est", "sont", "un", "une", "de", "du", "des",
		"que", "qui", "dans", "pour", "sur", "avec", "ce", "cette", "pas",
		"plus", "tout", "très", "bien", "mais", "comme", "aussi", "produit",
		"qualité",
	},
	"es": {
		"el", "la", "los", "las", "es", "son", "un", "una", "de", "del", "que",
		"para", "por", "con", "en", "no", "muy", "pero", "como", "más", "todo",
		"esta", "este", "bien", "si", "ya", "producto", "calidad", "excelente",
	},
}
