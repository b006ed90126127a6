package topic

// DefaultLanguages is the enumeration order of the built-in catalog
var DefaultLanguages = []string{"ru", "pl", "uk"}

// defaultTopics keeps the same index meaning in every language
var defaultTopics = map[string][]string{
	"ru": {
		"война",
		"Путин",
		"Зеленский",
		"НАТО",
		"санкции",
		"беженцы",
		"Украина",
		"Россия",
	},
	"pl": {
		"wojna",
		"Putin",
		"Zełenski",
		"NATO",
		"sankcje",
		"uchodźcy",
		"Ukraina",
		"Rosja",
	},
	"uk": {
		"війна",
		"Путін",
		"Зеленський",
		"НАТО",
		"санкції",
		"біженці",
		"Україна",
		"Росія",
	},
}

// Default returns the built-in catalog
func Default() *Catalog {
	c, err := NewCatalog(DefaultLanguages, defaultTopics)
	if err != nil {
		panic(err)
	}
	return c
}
