package renderer

import (
	"fmt"
	"sort"
	"text/template"
)

// Template wraps rendered statements into a runnable migration module. The
// template text receives a Body with the forward statements in .Up and the
// backward statements in .Down.
type Template struct {
	// Name identifies the template in configuration.
	Name string
	// Suffix is appended to the timestamp to form the artifact filename.
	Suffix string
	// Indent prefixes every statement line.
	Indent string
	// Text is a text/template source.
	Text string
}

// Body is the data a Template is executed with.
type Body struct {
	Up   string
	Down string
}

// DBMigrate targets the db-migrate runner: a CommonJS module exporting setup,
// up and down. Both entry points return null, which db-migrate reads as
// synchronous success.
var DBMigrate = Template{
	Name:   "db-migrate",
	Suffix: "-generated.js",
	Indent: "  ",
	Text: `'use strict';

var dbm;
var type;
var seed;

exports.setup = function(options, seedLink) {
  dbm = options.dbmigrate;
  type = dbm.dataType;
  seed = seedLink;
};

exports.up = function(db) {
{{.Up}}
  return null;
};

exports.down = function(db) {
{{.Down}}
  return null;
};
`,
}

var templates = map[string]Template{
	DBMigrate.Name: DBMigrate,
}

// Register makes a template available by name.
func Register(t Template) {
	templates[t.Name] = t
}

// Lookup returns a registered template.
func Lookup(name string) (Template, error) {
	t, ok := templates[name]
	if !ok {
		return Template{}, fmt.Errorf("unknown migration template %q (available: %v)", name, Names())
	}
	return t, nil
}

// Names lists registered template names.
func Names() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t Template) parse() (*template.Template, error) {
	tmpl, err := template.New(t.Name).Option("missingkey=error").Parse(t.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", t.Name, err)
	}
	return tmpl, nil
}
