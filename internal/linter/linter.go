// Package linter reports style problems in IDL declarations: naming that
// does not follow the binding conventions, identifiers that collide with
// reserved words of a target language, and declarations that are empty or
// never used.
package linter

import (
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"

	"github.com/lhaig/idlgen/internal/diagnostic"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/module"
)

// Linter checks the files of one resolved graph. It reports warnings and
// infos, never errors.
type Linter struct {
	graph *module.Graph
	diag  *diagnostic.Diagnostics
	used  map[string]bool
}

// Lint runs all lint rules over every file of g.
func Lint(g *module.Graph) *diagnostic.Diagnostics {
	l := &Linter{
		graph: g,
		diag:  diagnostic.New(),
		used:  make(map[string]bool),
	}
	for _, f := range g.Files() {
		for _, t := range g.UsedTypes(f.Name) {
			l.used[t] = true
		}
	}

	for _, f := range g.Files() {
		l.diag.SetFile(f.Name)
		l.lintEnums(f)
		l.lintStructs(f)
		l.lintCallbacks(f)
		l.lintClasses(f)
	}
	l.diag.Sort()
	return l.diag
}

func (l *Linter) lintEnums(f *model.File) {
	for _, e := range f.Enums {
		l.checkTypeNaming("enum", e.Name, e.Pos)
		l.checkUnused("enum", e.Name, e.Pos)
		if len(e.Values) == 0 {
			l.diag.Warningf(e.Line, e.Column, "enum '%s' has no values", e.Name)
		}
		for _, v := range e.Values {
			if !isScreamingSnake(v.Name) {
				l.diag.WarningWithHint(v.Line, v.Column,
					"enum value '"+e.Name+"."+v.Name+"' should be UPPER_SNAKE_CASE",
					"rename to '"+strcase.ToScreamingSnake(v.Name)+"'")
			}
			l.checkReserved("enum value", v.Name, v.Pos)
		}
	}
}

func (l *Linter) lintStructs(f *model.File) {
	for _, s := range f.Structs {
		l.checkTypeNaming("struct", s.Name, s.Pos)
		l.checkUnused("struct", s.Name, s.Pos)
		if len(s.Members) == 0 {
			l.diag.Warningf(s.Line, s.Column, "struct '%s' has no fields", s.Name)
		}
		for _, m := range s.Members {
			l.checkMemberNaming("field", s.Name+"."+m.Name, m.Name, m.Pos)
		}
	}
}

func (l *Linter) lintCallbacks(f *model.File) {
	for _, cb := range f.Callbacks {
		l.checkTypeNaming("callback", cb.Name, cb.Pos)
		l.checkUnused("callback", cb.Name, cb.Pos)
		l.checkParams(cb.Name, cb.Params)
	}
}

func (l *Linter) lintClasses(f *model.File) {
	for i := range f.Classes {
		c := &f.Classes[i]
		l.checkTypeNaming("class", c.Name, c.Pos)
		if c.Constructor() == nil {
			l.diag.WarningWithHint(c.Line, c.Column,
				"class '"+c.Name+"' has no constructor",
				"instances can only be obtained from methods returning '"+c.Name+"*'")
		} else {
			l.checkParams(c.Name+"."+c.Name, c.Constructor().Params)
		}
		for _, m := range c.Operations() {
			l.checkMemberNaming("method", c.Name+"."+m.Name, m.Name, m.Pos)
			l.checkParams(c.Name+"."+m.Name, m.Params)
		}
		for _, a := range c.Attributes {
			l.checkMemberNaming("attribute", c.Name+"."+a.Name, a.Name, a.Pos)
		}
	}
}

func (l *Linter) checkParams(scope string, params []model.Param) {
	for _, p := range params {
		l.checkMemberNaming("parameter", scope+"("+p.Name+")", p.Name, p.Pos)
	}
}

// checkTypeNaming warns when a type name is not UpperCamelCase
func (l *Linter) checkTypeNaming(kind, name string, pos model.Pos) {
	if !isUpperCamel(name) {
		l.diag.WarningWithHint(pos.Line, pos.Column,
			kind+" '"+name+"' should be UpperCamelCase",
			"rename to '"+strcase.ToCamel(name)+"'")
	}
	l.checkReserved(kind, name, pos)
}

// checkMemberNaming warns when a method, attribute, field or parameter
// name is not lowerCamelCase
func (l *Linter) checkMemberNaming(kind, qualified, name string, pos model.Pos) {
	if !isLowerCamel(name) {
		l.diag.WarningWithHint(pos.Line, pos.Column,
			kind+" '"+qualified+"' should be lowerCamelCase",
			"rename to '"+strcase.ToLowerCamel(name)+"'")
	}
	l.checkReserved(kind, name, pos)
}

func (l *Linter) checkReserved(kind, name string, pos model.Pos) {
	if langs := reservedIn(name); len(langs) > 0 {
		l.diag.Warningf(pos.Line, pos.Column,
			"%s name '%s' is a reserved word in %s", kind, name, strings.Join(langs, " and "))
	}
}

// checkUnused reports value types that no file refers to
func (l *Linter) checkUnused(kind, name string, pos model.Pos) {
	if !l.used[name] {
		l.diag.Infof(pos.Line, pos.Column, "%s '%s' is never used", kind, name)
	}
}

// isUpperCamel returns true if the name starts with an uppercase letter
// and contains no underscores.
func isUpperCamel(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsUpper([]rune(name)[0]) && !strings.ContainsRune(name, '_')
}

// isLowerCamel returns true if the name starts with a lowercase letter
// and contains no underscores.
func isLowerCamel(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsLower([]rune(name)[0]) && !strings.ContainsRune(name, '_')
}

func isScreamingSnake(name string) bool {
	if name == "" || name[0] == '_' {
		return false
	}
	for _, r := range name {
		if !unicode.IsUpper(r) && r != '_' && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
