package domain

import "sort"

// SupportedLanguages is the closed set of translation targets. Codes
// outside this map are rejected before any transport call.
var SupportedLanguages = map[string]string{
	"en": "English",
	"fr": "French",
	"es": "Spanish",
	"de": "German",
	"hi": "Hindi",
	"kn": "Kannada",
	"te": "Telugu",
	"ta": "Tamil",
	"ar": "Arabic",
	"ru": "Russian",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
}

func IsSupportedLanguage(code string) bool {
	_, ok := SupportedLanguages[code]
	return ok
}

// LanguageName returns the display name for a supported code, or the code
// itself when unknown.
func LanguageName(code string) string {
	if name, ok := SupportedLanguages[code]; ok {
		return name
	}
	return code
}

// LanguageCodes returns the supported codes in stable alphabetical order
// for the UI picker.
func LanguageCodes() []string {
	codes := make([]string, 0, len(SupportedLanguages))
	for code := range SupportedLanguages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
