package fetch

import "strings"

// ExtractJSON isolates the JSON object embedded in noisy text: the
// substring from the first '{' to the last '}' inclusive. Some relays
// wrap payloads in HTML chrome or comments; this strips the envelope
// without a full parser. If no braces are found, or they are in the
// wrong order, the input is returned unchanged and the downstream
// decoder fails loudly instead.
func ExtractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < 0 || end < start {
		return text
	}
	return text[start : end+1]
}

// ExtractXML is the structural analog of ExtractJSON for XML documents,
// using the first '<' and the last '>'.
func ExtractXML(text string) string {
	start := strings.Index(text, "<")
	end := strings.LastIndex(text, ">")
	if start < 0 || end < 0 || end < start {
		return text
	}
	return text[start : end+1]
}
