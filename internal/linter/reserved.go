package linter

var reserved = []struct {
	lang  string
	words map[string]bool
}{
	{"C++", set(
		"alignas", "alignof", "and", "asm", "auto", "bool", "break", "case", "catch", "char",
		"class", "const", "constexpr", "const_cast", "continue", "decltype", "default", "delete",
		"do", "double", "dynamic_cast", "else", "enum", "explicit", "export", "extern", "false",
		"float", "for", "friend", "goto", "if", "inline", "int", "long", "mutable", "namespace",
		"new", "noexcept", "not", "nullptr", "operator", "or", "private", "protected", "public",
		"register", "reinterpret_cast", "return", "short", "signed", "sizeof", "static",
		"static_assert", "static_cast", "struct", "switch", "template", "this", "throw", "true",
		"try", "typedef", "typeid", "typename", "union", "unsigned", "using", "virtual", "void",
		"volatile", "while", "xor",
	)},
	{"Java", set(
		"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char", "class",
		"const", "continue", "default", "do", "double", "else", "enum", "extends", "final",
		"finally", "float", "for", "goto", "if", "implements", "import", "instanceof", "int",
		"interface", "long", "native", "new", "null", "package", "private", "protected", "public",
		"return", "short", "static", "strictfp", "super", "switch", "synchronized", "this",
		"throw", "throws", "transient", "try", "void", "volatile", "while", "true", "false",
	)},
	{"Python", set(
		"False", "None", "True", "and", "as", "assert", "async", "await", "break", "class",
		"continue", "def", "del", "elif", "else", "except", "finally", "for", "from", "global",
		"if", "import", "in", "is", "lambda", "nonlocal", "not", "or", "pass", "raise", "return",
		"try", "while", "with", "yield",
	)},
}

// reservedIn returns the target languages that reserve name
func reservedIn(name string) []string {
	var langs []string
	for _, r := range reserved {
		if r.words[name] {
			langs = append(langs, r.lang)
		}
	}
	return langs
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
