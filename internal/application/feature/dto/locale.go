package dto

import "golang.org/x/text/language"

type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleArabic  Locale = "ar"
)

var (
	supportedTags = []language.Tag{language.English, language.Arabic}
	localeMatcher = language.NewMatcher(supportedTags)
)

// ParseLocale matches an Accept-Language header against the supported display
// languages. Anything unparseable falls back to English.
func ParseLocale(acceptLanguage string) Locale {
	if acceptLanguage == "" {
		return LocaleEnglish
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LocaleEnglish
	}
	_, index, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return LocaleEnglish
	}
	if supportedTags[index] == language.Arabic {
		return LocaleArabic
	}
	return LocaleEnglish
}

// Direction is the text direction for the locale.
func (l Locale) Direction() string {
	if l == LocaleArabic {
		return "rtl"
	}
	return "ltr"
}
