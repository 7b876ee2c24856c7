package syntax

import (
	"testing"

	"github.com/cptaffe/acme-brackets/config"
)

func TestShebangInterpreter(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"#!/bin/sh", "sh"},
		{"#!/bin/bash", "bash"},
		{"#!/usr/bin/env bash", "bash"},
		{"#!/usr/bin/env python3", "python3"},
		{"#!/usr/bin/env python3.11", "python3.11"},
		{"#!/usr/bin/env -S scala -classpath lib", "scala"},
		{"#!/usr/bin/env -vS node", "node"},
		{"#!/usr/bin/env jbang", "jbang"},
		{"#!/usr/bin/env deno", "deno"},
		{"# not a shebang", ""},
		{"", ""},
		{"#!/usr/bin/env -S", ""}, // env -S with nothing after
		{"#!/usr/bin/env -S LC_ALL=C python3 -u", "python3"},
		{"#!/usr/bin/env FOO=1", ""},
	}
	for _, c := range cases {
		got := shebangInterpreter(c.line)
		if got != c.want {
			t.Errorf("shebangInterpreter(%q) = %q, want %q", c.line, got, c.want)
		}
	}
}

func TestLangIDForInterpreter(t *testing.T) {
	cases := []struct {
		interp string
		wantID string
	}{
		{"bash", "bash"},
		{"sh", "bash"},
		{"zsh", "bash"},
		{"fish", "bash"},
		{"python", "python"},
		{"python3", "python"},
		{"python3.11", "python"},
		{"python2.7", "python"},
		{"node", "javascript"},
		{"nodejs", "javascript"},
		{"deno", "javascript"},
		{"bun", "javascript"},
		{"ts-node", "javascript"},
		{"java", "java"},
		{"jbang", "java"},
		{"scala", "scala"},
		{"scala3", "scala"},
		{"amm", "scala"},
		{"rust-script", "rust"},
		{"ruby", ""},   // not registered
		{"perl", ""},   // not registered
		{"", ""},
	}
	for _, c := range cases {
		got := langIDForInterpreter(c.interp)
		if got != c.wantID {
			t.Errorf("langIDForInterpreter(%q) = %q, want %q", c.interp, got, c.wantID)
		}
	}
}

func TestDetectByShebang(t *testing.T) {
	cases := []struct {
		line     string
		wantLang string // "" means nil expected
	}{
		{"#!/usr/bin/env python3", "python"},
		{"#!/usr/bin/env python3.11", "python"},
		{"#!/usr/bin/env bash", "bash"},
		{"#!/bin/sh", "bash"},
		{"#!/usr/bin/env scala", "scala"},
		{"#!/usr/bin/env -S scala", "scala"},
		{"#!/usr/bin/env java", "java"},
		{"#!/usr/bin/env jbang", "java"},
		{"#!/usr/bin/env node", "javascript"},
		{"#!/usr/bin/env deno", "javascript"},
		{"#!/usr/bin/env rust-script", "rust"},
		{"#!/usr/bin/env -S LANG=C pypy3", "python"},
		{"#!/usr/bin/env node20", "javascript"},
		{"package main", ""},          // not a shebang
		{"#!/usr/bin/env ruby", ""},   // grammar not registered
	}
	for _, c := range cases {
		lang := detectByShebang(c.line)
		got := ""
		if lang != nil {
			got = lang.Name
		}
		if got != c.wantLang {
			t.Errorf("detectByShebang(%q) = %q, want %q", c.line, got, c.wantLang)
		}
	}
}

func TestCompileHandlersRejectsBadPattern(t *testing.T) {
	cfg := config.Default()
	cfg.FilenameHandlers = []config.FilenameHandler{{Pattern: `(`, LanguageID: "go"}}
	if _, err := CompileHandlers(cfg); err == nil {
		t.Fatal("CompileHandlers accepted an invalid regex")
	}
}

func TestDetectLanguage(t *testing.T) {
	handlers, err := CompileHandlers(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name     string
		body     string
		wantLang string // "" means nil expected
	}{
		{"/src/x/main.go", "package main\n", "go"},
		{"/src/x/lib.rs", "", "rust"},
		{"/src/x/a.h", "", "c"},
		{"/src/x/a.hpp", "", "cpp"},
		{"/src/x/App.jsx", "", "javascript"},
		{"/src/x/conf.json", "{}", TextID},
		{"/src/x/run", "#!/usr/bin/env python3\nprint()\n", "python"},
		{"/src/x/run", "#!/bin/sh", "bash"},
		{"/src/x/README", "hello\n", ""},
		{"/src/x/+Errors", "", ""},
	}
	for _, c := range cases {
		lang := DetectLanguage(handlers, c.name, []byte(c.body))
		got := ""
		if lang != nil {
			got = lang.Name
		}
		if got != c.wantLang {
			t.Errorf("DetectLanguage(%q) = %q, want %q", c.name, got, c.wantLang)
		}
	}
}

func TestUnsupportedHandlerStopsSearch(t *testing.T) {
	cfg := config.Default()
	cfg.FilenameHandlers = []config.FilenameHandler{
		{Pattern: `\.rb$`, LanguageID: "ruby"},
		{Pattern: `.*`, LanguageID: "text"},
	}
	handlers, err := CompileHandlers(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if lang := DetectLanguage(handlers, "x.rb", nil); lang != nil {
		t.Errorf("DetectLanguage(x.rb) = %q, want nil", lang.Name)
	}
	if lang := DetectLanguage(handlers, "x.txt", nil); lang == nil || lang.Name != TextID {
		t.Errorf("DetectLanguage(x.txt) = %v, want text", lang)
	}
}
