package embed

// IsInStyleRegion reports whether offset falls inside the span of a <style>
// block. Both ends of the span count as inside.
func IsInStyleRegion(tokenizer Tokenizer, text string, offset int) bool {
	scanner := tokenizer.CreateScanner(text)
	for kind := scanner.Scan(); kind != TokenEOS; kind = scanner.Scan() {
		if kind != TokenStyles {
			continue
		}
		if scanner.TokenOffset() <= offset && offset <= scanner.TokenEnd() {
			return true
		}
	}
	return false
}

// GetCSSContent returns a copy of text in which every byte outside a CSS
// region is replaced by a space. Newlines are kept, so line and column
// positions in the result match the original document.
//
// Script and event-handler regions are classified along the way but are
// never copied into the result.
func GetCSSContent(tokenizer Tokenizer, text string) string {
	return Project(text, Scan(tokenizer, text).RegionsFor(LanguageCSS))
}

// Project blanks text and copies the given regions back into it
func Project(text string, regions []Region) string {
	content := Blank(text)
	for _, r := range regions {
		copy(content[r.Start:r.End], text[r.Start:r.End])
	}
	return string(content)
}

// Blank returns a buffer the length of text with every byte other than
// '\n' replaced by a space
func Blank(text string) []byte {
	content := make([]byte, len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			content[i] = '\n'
		} else {
			content[i] = ' '
		}
	}
	return content
}
