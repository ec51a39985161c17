package render

import (
	"maps"
	"slices"
	"strings"

	"github.com/beevik/etree"
)

// HTML void elements must not have end tags.
var voidEndTags = strings.NewReplacer("</img>", "", "</br>", "", "</hr>", "", "</input>", "")

// toHTML serializes element tree as HTML fragment, nil element produces empty
// fragment.
func toHTML(el *etree.Element) (string, error) {
	if el == nil {
		return "", nil
	}
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalEndTags = true
	doc.SetRoot(el)
	out, err := doc.WriteToString()
	if err != nil {
		return "", err
	}
	return voidEndTags.Replace(out), nil
}

func newElement(tag string, classes ...string) *etree.Element {
	el := etree.NewElement(tag)
	if cls := joinClasses(classes...); len(cls) > 0 {
		el.CreateAttr("class", cls)
	}
	return el
}

func createElement(parent *etree.Element, tag string, classes ...string) *etree.Element {
	el := newElement(tag, classes...)
	parent.AddChild(el)
	return el
}

func createLink(parent *etree.Element, href, text string, classes ...string) *etree.Element {
	a := createElement(parent, "a", classes...)
	a.CreateAttr("href", href)
	if len(text) > 0 {
		a.SetText(text)
	}
	return a
}

func joinClasses(classes ...string) string {
	var parts []string
	for _, c := range classes {
		parts = append(parts, strings.Fields(c)...)
	}
	return strings.Join(parts, " ")
}

// applyAttributes copies extra wrapper attributes, class values are appended
// rather than replaced. Keys are sorted to keep output stable.
func applyAttributes(el *etree.Element, attrs map[string]string) {
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		v := attrs[k]
		if k == "class" {
			v = joinClasses(el.SelectAttrValue("class", ""), v)
		}
		el.CreateAttr(k, v)
	}
}

// truncateName cuts name to limit characters adding ellipsis.
func truncateName(name string, limit int) string {
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	return string(runes[:limit]) + "..."
}
