package task

import (
	"slices"
	"strings"
	"time"
)

type Task struct {
	ID        int64     `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Datetime  string    `json:"datetime" yaml:"datetime"`
	Completed bool      `json:"completed" yaml:"completed"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	Tags      []Tag     `json:"tags" yaml:"tags"`
}

type Tag string
type Theme string

const TagWork Tag = "work"
const TagPersonal Tag = "personal"
const TagShopping Tag = "shopping"

const ThemeLight Theme = "light"
const ThemeDark Theme = "dark"

// Vocabulary - фиксированный набор меток, порядок используется в статистике
var Vocabulary = []Tag{TagWork, TagPersonal, TagShopping}

func (t Tag) Valid() bool {
	return slices.Contains(Vocabulary, t)
}

func ParseTag(s string) (Tag, bool) {
	tag := Tag(strings.ToLower(strings.TrimSpace(s)))
	return tag, tag.Valid()
}

func (th Theme) Valid() bool {
	return th == ThemeLight || th == ThemeDark
}

func (th Theme) Toggle() Theme {
	if th == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func (t *Task) HasTag(tag Tag) bool {
	return slices.Contains(t.Tags, tag)
}

// Due возвращает срок выполнения в календаре loc; false если строка не разбирается
func (t *Task) Due(loc *time.Location) (time.Time, bool) {
	due, err := ParseDatetime(t.Datetime, loc)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}

// Clone копирует задачу вместе со срезом меток
func (t *Task) Clone() Task {
	c := *t
	c.Tags = append(make([]Tag, 0, len(t.Tags)), t.Tags...)
	return c
}

// NormalizeTags убирает дубликаты, сохраняя порядок; nil превращается в пустой срез
func NormalizeTags(tags []Tag) []Tag {
	res := make([]Tag, 0, len(tags))
	for _, tag := range tags {
		if !slices.Contains(res, tag) {
			res = append(res, tag)
		}
	}
	return res
}
