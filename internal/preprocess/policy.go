package preprocess

import (
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/cxdoc/cxdoc/internal/entity"
	"github.com/cxdoc/cxdoc/internal/macro"
)

// policy is the hook set of one run. It is the only writer of directive
// entities into file.
type policy struct {
	relevant   DirectoryPredicate
	file       *entity.File
	log        *logrus.Entry
	suppressed int
}

func (p *policy) hooks() macro.Hooks {
	return macro.Hooks{
		OnWarning:  p.onWarning,
		OnInclude:  p.onInclude,
		OnDefine:   p.onDefine,
		OnUndefine: p.onUndefine,
	}
}

func position(loc macro.Location) entity.Position {
	return entity.Position{Line: loc.Line, Column: loc.Column, Offset: loc.Offset}
}

func (p *policy) isRelevant(resolved string) bool {
	return p.relevant != nil && p.relevant(filepath.Dir(resolved))
}

// onInclude records documented includes of the main file instead of
// expanding them. Every other include is expanded and its directive is
// written back into the output for the syntax parser.
func (p *policy) onInclude(ev macro.IncludeEvent) (macro.Decision, string) {
	if ev.Found && !ev.Next && ev.Depth == 0 && p.isRelevant(ev.Resolved) {
		kind := entity.LocalInclude
		if ev.System {
			kind = entity.SystemInclude
		}
		p.file.Append(&entity.InclusionDirective{
			Path:        ev.Path,
			IncludeKind: kind,
			Position:    position(ev.Location),
		})
		return macro.Suppress, ""
	}
	if !ev.Found {
		p.log.WithField("include", ev.Path).Debug("unresolved include")
	}
	return macro.PassThrough, directiveText(ev)
}

// directiveText spells the include as written.
func directiveText(ev macro.IncludeEvent) string {
	kw := "#include "
	if ev.Next {
		kw = "#include_next "
	}
	if ev.System {
		return kw + "<" + ev.Path + ">"
	}
	return kw + `"` + ev.Path + `"`
}

func (p *policy) onDefine(ev macro.DefineEvent) macro.Decision {
	if ev.Depth > 0 || ev.Macro.Predefined {
		return macro.Continue
	}
	p.file.Append(&entity.MacroDefinition{
		MacroName:   ev.Macro.Name,
		Params:      ev.Macro.ParamList(),
		Replacement: ev.Macro.Body(),
		Line:        ev.Line,
		Position:    position(ev.Location),
	})
	return macro.Continue
}

// onUndefine retracts the most recent entity named after the macro and
// everything recorded after it.
func (p *policy) onUndefine(ev macro.UndefineEvent) macro.Decision {
	if ev.Depth > 0 {
		return macro.Continue
	}
	if i := p.file.LastIndex(ev.Name); i >= 0 {
		p.file.TruncateFrom(i)
	}
	return macro.Continue
}

func (p *policy) onWarning(ev macro.WarningEvent) macro.Decision {
	p.suppressed++
	p.log.WithFields(logrus.Fields{
		"file": ev.File,
		"line": ev.Line,
	}).Debug(ev.Message)
	return macro.Suppress
}
