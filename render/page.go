package render

// JSString is an interface string requested by client side code.
type JSString struct {
	Component string
	Key       string
}

// Page collects client side dependencies declared while rendering a single
// page. Declarations are idempotent and keep first declaration order.
type Page struct {
	modules []string
	strings []JSString
	seen    map[string]struct{}
}

func NewPage() *Page {
	return &Page{seen: make(map[string]struct{})}
}

func (p *Page) once(key string) bool {
	if _, ok := p.seen[key]; ok {
		return false
	}
	p.seen[key] = struct{}{}
	return true
}

// RequireModule declares script module page needs.
func (p *Page) RequireModule(name string) {
	if p.once("m:" + name) {
		p.modules = append(p.modules, name)
	}
}

// RequireStrings declares strings to be made available to scripts.
func (p *Page) RequireStrings(component string, keys ...string) {
	for _, k := range keys {
		if p.once("s:" + component + "/" + k) {
			p.strings = append(p.strings, JSString{Component: component, Key: k})
		}
	}
}

func (p *Page) Modules() []string {
	return append([]string(nil), p.modules...)
}

func (p *Page) Strings() []JSString {
	return append([]JSString(nil), p.strings...)
}
