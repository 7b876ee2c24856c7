package syntax

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/cptaffe/acme-brackets/config"
)

// Handler is a compiled FilenameHandler, ready for matching.
type Handler struct {
	re   *regexp.Regexp
	lang *Language // nil if LanguageID is unsupported
}

// CompileHandlers pre-compiles the FilenameHandler regexes from cfg.
// Handlers whose regex is invalid are returned as an error.
func CompileHandlers(cfg *config.Config) ([]Handler, error) {
	out := make([]Handler, 0, len(cfg.FilenameHandlers))
	for _, fh := range cfg.FilenameHandlers {
		re, err := regexp.Compile(fh.Pattern)
		if err != nil {
			return nil, fmt.Errorf("FilenameHandler pattern %q: %w", fh.Pattern, err)
		}
		out = append(out, Handler{
			re:   re,
			lang: LangByID(fh.LanguageID),
		})
	}
	return out, nil
}

// DetectLanguage returns the Language for a file, trying filename patterns
// first and falling back to a shebang on the first line of body.  It
// returns nil when neither identifies a registered language.
func DetectLanguage(handlers []Handler, name string, body []byte) *Language {
	if lang := languageForName(handlers, name); lang != nil {
		return lang
	}
	return detectByShebang(firstLine(body))
}

// languageForName returns the Language of the first handler whose pattern
// matches name.  A match on an unsupported language ID stops the search
// and yields nil.
func languageForName(handlers []Handler, name string) *Language {
	for _, h := range handlers {
		if h.re.MatchString(name) {
			return h.lang
		}
	}
	return nil
}

// firstLine returns the content of body up to (but not including) the first
// newline, or the whole body if there is no newline.
func firstLine(body []byte) string {
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		return string(body[:i])
	}
	return string(body)
}

// interpreters lists, per language ID, the interpreter names that select it
// from a #! line.
var interpreters = map[string][]string{
	"bash":       {"ash", "bash", "dash", "fish", "ksh", "sh", "zsh"},
	"python":     {"python", "pypy"},
	"javascript": {"bun", "deno", "node", "nodejs", "ts-node"},
	"java":       {"java", "jbang"},
	"scala":      {"amm", "scala", "scala-cli"}, // amm: Ammonite
	"rust":       {"rust-script"},
}

// shebangs is interpreters inverted: interpreter base-name to language ID.
var shebangs = func() map[string]string {
	m := make(map[string]string)
	for id, names := range interpreters {
		for _, name := range names {
			m[name] = id
		}
	}
	return m
}()

// detectByShebang returns the Language named by a #! first line, or nil.
func detectByShebang(firstLine string) *Language {
	id := langIDForInterpreter(shebangInterpreter(firstLine))
	if id == "" {
		return nil
	}
	return LangByID(id)
}

// shebangInterpreter returns the base-name of the program a #! line runs:
//
//	#!/bin/bash                          bash
//	#!/usr/bin/env python3               python3
//	#!/usr/bin/env -S LC_ALL=C scala -x  scala
//
// When the program is env, its options and NAME=value assignments are
// skipped.
func shebangInterpreter(line string) string {
	rest, ok := strings.CutPrefix(line, "#!")
	if !ok {
		return ""
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	if filepath.Base(fields[0]) != "env" {
		return filepath.Base(fields[0])
	}
	for _, f := range fields[1:] {
		if strings.HasPrefix(f, "-") || strings.Contains(f, "=") {
			continue
		}
		return filepath.Base(f)
	}
	return ""
}

// langIDForInterpreter returns the language ID for an interpreter name,
// ignoring a trailing version ("python3.11", "node20").  It returns "" for
// unknown interpreters.
func langIDForInterpreter(name string) string {
	unversioned := strings.TrimRightFunc(name, func(r rune) bool {
		return r == '.' || unicode.IsDigit(r)
	})
	for _, candidate := range []string{name, unversioned} {
		if id, ok := shebangs[candidate]; ok && candidate != "" {
			return id
		}
	}
	return ""
}
