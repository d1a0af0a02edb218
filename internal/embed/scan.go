package embed

import (
	"regexp"
	"strings"
)

var (
	// Matched against the raw, quoted value of a <script type> attribute
	javaScriptTypePattern = regexp.MustCompile(`["'](module|(text|application)/(java|ecma)script|text/babel)["']`)
	typeScriptTypePattern = regexp.MustCompile(`["']text/typescript["']`)

	attributeLanguagePattern = regexp.MustCompile(`(?i)^(style)$|(^on\w+$)`)
)

// scanState is the per-call state of the region state machine
type scanState struct {
	text          string
	tagName       string
	attributeName string
	// scriptLanguage is the language inferred for the open tag's body.
	// Empty means the body is not embeddable.
	scriptLanguage string
	result         *Result
}

// Scan runs the tokenizer over text once and collects every embedded region
// and script import. It never fails: whatever token stream the tokenizer
// produces is classified as-is.
func Scan(tokenizer Tokenizer, text string) *Result {
	state := &scanState{
		text:   text,
		result: &Result{},
	}

	scanner := tokenizer.CreateScanner(text)
	for kind := scanner.Scan(); kind != TokenEOS; kind = scanner.Scan() {
		state.handle(kind, scanner)
	}

	return state.result
}

func (s *scanState) handle(kind TokenKind, scanner Scanner) {
	switch kind {
	case TokenStartTag:
		s.tagName = scanner.TokenText()
		s.attributeName = ""
		s.scriptLanguage = LanguageJavaScript

	case TokenStyles:
		s.addRegion(LanguageCSS, scanner.TokenOffset(), scanner.TokenEnd(), false)

	case TokenScript:
		s.addRegion(s.scriptLanguage, scanner.TokenOffset(), scanner.TokenEnd(), false)

	case TokenAttributeName:
		s.attributeName = scanner.TokenText()

	case TokenAttributeValue:
		s.handleAttributeValue(scanner)
		s.attributeName = ""
	}
}

func (s *scanState) handleAttributeValue(scanner Scanner) {
	isScriptTag := strings.ToLower(s.tagName) == "script"

	switch {
	case s.attributeName == "src" && isScriptTag:
		value := scanner.TokenText()
		if value != "" && (value[0] == '\'' || value[0] == '"') {
			value = value[1:]
		}
		s.result.Imports = append(s.result.Imports, Import{
			Value: value,
			Start: scanner.TokenOffset(),
			End:   scanner.TokenEnd(),
		})

	case s.attributeName == "type" && isScriptTag:
		s.scriptLanguage = scriptTypeLanguage(scanner.TokenText())

	default:
		languageID := AttributeLanguage(s.attributeName)
		if languageID == "" {
			return
		}
		start, end := scanner.TokenOffset(), scanner.TokenEnd()
		if start >= 0 && start < len(s.text) && isQuote(s.text[start]) {
			// Only the opening character is checked; the closing one is
			// assumed to match.
			start++
			end--
		}
		s.addRegion(languageID, start, end, true)
	}
}

// addRegion records a region with its offsets clamped to the text
func (s *scanState) addRegion(languageID string, start, end int, isAttributeValue bool) {
	start = clamp(start, 0, len(s.text))
	end = clamp(end, start, len(s.text))
	s.result.Regions = append(s.result.Regions, Region{
		LanguageID:       languageID,
		Start:            start,
		End:              end,
		IsAttributeValue: isAttributeValue,
	})
}

// scriptTypeLanguage classifies the raw value of a <script type> attribute
func scriptTypeLanguage(rawValue string) string {
	switch {
	case javaScriptTypePattern.MatchString(rawValue):
		return LanguageJavaScript
	case typeScriptTypePattern.MatchString(rawValue):
		return LanguageTypeScript
	default:
		return ""
	}
}

// AttributeLanguage returns the language embedded in an attribute's value:
// LanguageCSS for style, LanguageJavaScript for on* event handlers, and ""
// for everything else.
func AttributeLanguage(attributeName string) string {
	match := attributeLanguagePattern.FindStringSubmatch(attributeName)
	if match == nil {
		return ""
	}
	if match[1] != "" {
		return LanguageCSS
	}
	return LanguageJavaScript
}

func isQuote(c byte) bool {
	return c == '\'' || c == '"'
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
