// Package locale provides localized interface strings.
package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// String keys, kept in one place so renderers and tests agree on them.
const (
	Summary      = "summary"
	CollapseAll  = "collapseall"
	ExpandAll    = "expandall"
	ViewMore     = "viewmore"
	ShowAll      = "showall"
	ShowPerPage  = "showperpage"
	Previous     = "previous"
	Next         = "next"
	Page         = "page"
	NoAuthors    = "noauthors"
	Teachers     = "teachers"
	Rating       = "rating"
	CourseImage  = "courseimage"
	Categories   = "categories"
	NoCategories = "nocategories"
)

var supported = []language.Tag{language.English, language.Russian}

var messages = map[language.Tag]map[string]string{
	language.English: {
		Summary:      "Summary",
		CollapseAll:  "Collapse all",
		ExpandAll:    "Expand all",
		ViewMore:     "View more",
		ShowAll:      "Show all %d",
		ShowPerPage:  "Show %d per page",
		Previous:     "Previous",
		Next:         "Next",
		Page:         "Page %d",
		NoAuthors:    "Authors are not specified",
		Teachers:     "Teachers",
		Rating:       "Rating",
		CourseImage:  "Course image",
		Categories:   "Course categories",
		NoCategories: "No categories",
	},
	language.Russian: {
		Summary:      "Описание",
		CollapseAll:  "Свернуть всё",
		ExpandAll:    "Развернуть всё",
		ViewMore:     "Показать больше",
		ShowAll:      "Показать все (%d)",
		ShowPerPage:  "Показывать по %d на странице",
		Previous:     "Назад",
		Next:         "Вперёд",
		Page:         "Страница %d",
		NoAuthors:    "Авторы не указаны",
		Teachers:     "Преподаватели",
		Rating:       "Рейтинг",
		CourseImage:  "Изображение курса",
		Categories:   "Категории курсов",
		NoCategories: "Нет категорий",
	},
}

var builder = func() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			// keys and messages are static, error is impossible here
			_ = b.SetString(tag, key, msg)
		}
	}
	return b
}()

// Strings looks up interface strings for a single language.
type Strings struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns strings for the best supported match of requested language,
// English when nothing matches.
func New(lang string) *Strings {
	tag := language.English
	if t, err := language.Parse(lang); err == nil {
		_, idx, conf := language.NewMatcher(supported).Match(t)
		if conf != language.No {
			tag = supported[idx]
		}
	}
	return &Strings{tag: tag, printer: message.NewPrinter(tag, message.Catalog(builder))}
}

// Get returns localized string for key formatted with args.
func (s *Strings) Get(key string, args ...any) string {
	return s.printer.Sprintf(key, args...)
}

// Lang returns language strings are provided for.
func (s *Strings) Lang() language.Tag {
	return s.tag
}

// Keys returns all known string keys.
func Keys() []string {
	keys := make([]string, 0, len(messages[language.English]))
	for k := range messages[language.English] {
		keys = append(keys, k)
	}
	return keys
}
