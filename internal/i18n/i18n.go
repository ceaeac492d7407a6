// Package i18n выбирает язык ответа и отдаёт локализованные сообщения API (zh по умолчанию, en).
package i18n

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	Zh = "zh"
	En = "en"
)

var (
	supported = []language.Tag{language.Chinese, language.English}
	matcher   = language.NewMatcher(supported)
)

func init() {
	for key, m := range catalog {
		_ = message.SetString(language.Chinese, key, m.zh)
		_ = message.SetString(language.English, key, m.en)
	}
}

// Match выбирает язык: явный параметр lang важнее заголовка Accept-Language.
func Match(lang, acceptLanguage string) string {
	candidates := make([]string, 0, 2)
	if s := strings.TrimSpace(lang); s != "" {
		candidates = append(candidates, s)
	}
	if s := strings.TrimSpace(acceptLanguage); s != "" {
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return Zh
	}
	tag, _ := language.MatchStrings(matcher, candidates...)
	if base, _ := tag.Base(); base.String() == En {
		return En
	}
	return Zh
}

func FromRequest(r *http.Request) string {
	return Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

func tagFor(lang string) language.Tag {
	if lang == En {
		return language.English
	}
	return language.Chinese
}

// T возвращает сообщение по ключу. Неизвестный ключ возвращается как есть.
func T(lang, key string, args ...any) string {
	return message.NewPrinter(tagFor(lang)).Sprintf(key, args...)
}
