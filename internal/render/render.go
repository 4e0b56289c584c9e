// Package render expands description templates with row attributes and turns
// the result into sanitized HTML.
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/Velocidex/ordereddict"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
	blackfriday "github.com/russross/blackfriday/v2"

	"github.com/kailas-cloud/resultgrid/internal/domain/row"
	"github.com/kailas-cloud/resultgrid/internal/domain/value"
)

const defaultCacheSize = 512

// bare placeholders: {{name}}, {{ a.b }}, {{@type}}
var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z_@][A-Za-z0-9_@\-]*(?:\.[A-Za-z0-9_@\-]+)*)\s*\}\}`)

// Template keywords and constants keep their meaning when written bare.
// Every other bare name is a row attribute, even when a function shares it.
var keywords = map[string]bool{
	"if": true, "else": true, "end": true, "range": true, "with": true,
	"define": true, "template": true, "block": true, "break": true,
	"continue": true, "nil": true, "true": true, "false": true,
}

// Sprig functions withheld from descriptions: they read the host, reach the
// network, do key generation or allocate without bound.
var withheld = []string{
	"env", "expandenv", "getHostByName",
	"genPrivateKey", "genCA", "genCAWithKey", "genSelfSignedCert",
	"genSelfSignedCertWithKey", "genSignedCert", "genSignedCertWithKey",
	"buildCustomCert", "derivePassword", "htpasswd", "bcrypt",
	"encryptAES", "decryptAES",
	"repeat", "until", "untilStep", "seq",
	"randAlpha", "randAlphaNum", "randAscii", "randNumeric", "randBytes",
}

// Templater implements column.Templater on text/template with the sprig
// function set.
type Templater struct {
	funcs  template.FuncMap
	policy *bluemonday.Policy
	cache  *lru.Cache[string, *template.Template]
}

// Option configures a Templater.
type Option func(*Templater)

// WithCacheSize bounds the number of compiled templates kept.
func WithCacheSize(n int) Option {
	return func(t *Templater) {
		if n > 0 {
			t.cache, _ = lru.New[string, *template.Template](n)
		}
	}
}

// WithPolicy overrides the HTML sanitizing policy.
func WithPolicy(p *bluemonday.Policy) Option {
	return func(t *Templater) {
		if p != nil {
			t.policy = p
		}
	}
}

// New creates a Templater.
func New(opts ...Option) *Templater {
	t := &Templater{
		funcs:  sprig.TxtFuncMap(),
		policy: NewPolicy(),
	}
	// descriptions come from indexed documents
	for _, name := range withheld {
		delete(t.funcs, name)
	}
	t.funcs["lookup"] = Lookup
	for _, o := range opts {
		o(t)
	}
	if t.cache == nil {
		t.cache, _ = lru.New[string, *template.Template](defaultCacheSize)
	}
	return t
}

// NewPolicy returns the sanitizing policy applied to rendered descriptions.
func NewPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(true)
	return p
}

// Expand substitutes row attributes into text and renders it as markdown.
// It returns the substituted source and the sanitized HTML.
func (t *Templater) Expand(text string, r row.Record) (string, string, error) {
	source, err := t.Substitute(text, r)
	if err != nil {
		return "", "", err
	}
	return source, t.Markdown(source), nil
}

// Substitute executes text as a template against r.
func (t *Templater) Substitute(text string, r row.Record) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	tmpl, err := t.compile(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// Markdown renders source to sanitized HTML.
func (t *Templater) Markdown(source string) string {
	out := blackfriday.Run([]byte(source))
	return string(t.policy.SanitizeBytes(out))
}

func (t *Templater) compile(text string) (*template.Template, error) {
	if tmpl, ok := t.cache.Get(text); ok {
		return tmpl, nil
	}
	tmpl, err := template.New("description").
		Funcs(t.funcs).
		Option("missingkey=zero").
		Parse(rewrite(text))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	t.cache.Add(text, tmpl)
	return tmpl, nil
}

// rewrite turns bare placeholders into lookup calls, handlebars-style, so
// {{title}} reads the attribute and not the sprig function of that name.
// Expressions with arguments or pipes are left to the template engine.
func rewrite(text string) string {
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if keywords[name] {
			return m
		}
		return fmt.Sprintf(`{{ lookup . %q }}`, name)
	})
}

// Lookup resolves a dotted attribute path against a row. Missing attributes
// resolve to the empty string.
func Lookup(r row.Record, path string) string {
	head, rest, nested := strings.Cut(path, ".")
	v, ok := r.Get(head)
	if !ok {
		// attribute names may themselves contain dots
		if v, ok = r.Get(path); !ok {
			return ""
		}
		return value.String(v)
	}
	for nested {
		head, rest, nested = strings.Cut(rest, ".")
		if v, ok = child(v, head); !ok {
			return ""
		}
	}
	return value.String(v)
}

func child(v any, key string) (any, bool) {
	switch t := v.(type) {
	case *ordereddict.Dict:
		return t.Get(key)
	case map[string]any:
		c, ok := t[key]
		return c, ok
	default:
		return nil, false
	}
}
