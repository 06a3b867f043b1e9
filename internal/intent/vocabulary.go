package intent

// Vocabulary is the immutable word list used to classify patient replies for
// one language. Entries must already be in normalized form (lowercase, no
// diacritics, single spaces); replies are normalized before lookup.
type Vocabulary struct {
	Confirm        map[string]struct{}
	Cancel         map[string]struct{}
	ConfirmPhrases []string
	CancelPhrases  []string
}

func setOf(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// vocabularies maps a BCP 47 language tag to its reply vocabulary. Loaded once
// at init and never mutated afterwards.
var vocabularies = map[string]Vocabulary{
	"pt-BR": {
		Confirm: setOf(
			"sim", "s", "ss", "sss", "si", "sin", "simm", "simmm",
			"sim sim", "sim claro", "sim posso", "sim vou", "sim confirmo",
			"confirmo", "confirmar", "confirmado", "confirmada", "confirma",
			"confimo", "cofirmo", "confirmo sim",
			"ok", "okay", "okey", "okk", "oks",
			"blz", "beleza", "claro", "certo", "certeza", "com certeza",
			"combinado", "fechado", "fechou", "pode ser", "pode sim",
			"posso", "posso sim", "vou", "vou sim", "irei", "estarei",
			"estarei la", "vou comparecer", "comparecerei", "presente",
			"positivo", "afirmativo", "isso", "isso mesmo", "uhum", "aham",
			"show", "otimo", "perfeito", "ta bom", "ta otimo", "tabom",
			"tudo bem", "tudo certo", "yes",
			"👍", "👍🏻", "👍🏼", "👍🏽", "👍🏾", "👍🏿",
			"✅", "✔", "👌", "🆗",
		),
		Cancel: setOf(
			"nao", "n", "nn", "nnn", "naum", "no",
			"nao vou", "nao irei", "nao posso", "nao poderei", "nao da",
			"nao consigo", "nao quero", "nao vai dar", "nao vai rolar",
			"nao pode ser", "nao comparecerei", "nao estarei",
			"nao da pra ir", "nao vou conseguir", "nao vou poder",
			"cancela", "cancelar", "cancelado", "cancelada", "cancele",
			"cancelo", "cansela", "canselar", "cancelaa",
			"desmarca", "desmarcar", "desmarque", "desmarcado",
			"remarca", "remarcar", "remarque",
			"negativo", "impossivel", "desisti", "desisto",
			"infelizmente nao",
			"👎", "👎🏻", "👎🏼", "👎🏽", "👎🏾", "👎🏿",
			"❌", "🚫", "✖",
		),
		ConfirmPhrases: []string{
			"confirm",
			"estarei presente",
			"vou comparecer",
			"pode contar comigo",
			"vou sim",
			"posso sim",
			"claro que sim",
		},
		CancelPhrases: []string{
			"cancel",
			"desmarc",
			"remarc",
			"nao vou",
			"nao posso",
			"nao irei",
			"nao consigo",
			"nao poderei",
			"nao da pra",
			"nao vai dar",
		},
	},
}

// VocabularyFor returns the vocabulary registered for the language tag.
func VocabularyFor(lang string) (Vocabulary, bool) {
	v, ok := vocabularies[lang]
	return v, ok
}
