// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import (
	"regexp"
	"strings"
)

// Supported languages, in the order they appear in the language picker.
var SupportedLanguages = []string{
	"javascript",
	"typescript",
	"python",
	"java",
	"go",
	"cpp",
	"rust",
	"ruby",
	"php",
}

// Detection heuristics. Each pattern is matched against the raw code; the
// first language whose rules all hold wins. These are display hints only,
// so false positives are tolerable.
var (
	reJSKeywords   = regexp.MustCompile(`\b(const|let|var|function|=>|import|export)\b`)
	rePyShape      = regexp.MustCompile(`\b(def|import|from)\b|class .*:`)
	reTSKeywords   = regexp.MustCompile(`\b(interface|type|enum|namespace)\b`)
	reJavaKeywords = regexp.MustCompile(`\b(public|private|class|void|static)\b`)
	reGoKeywords   = regexp.MustCompile(`\b(package|func|import)\b`)
	reGoFunc       = regexp.MustCompile(`\bfunc\s+\w+\s*\(`)
	reCppMarkers   = regexp.MustCompile(`#include|using namespace|std::`)
	reRustKeywords = regexp.MustCompile(`\b(fn|let|mut|impl|trait|use)\b`)
	reRubyKeywords = regexp.MustCompile(`\b(def|end|require|class|module)\b`)
	reRubyEnd      = regexp.MustCompile(`\bend\s*$`)
)

// DetectLanguage guesses the programming language of a code fragment.
// Pure function; returns "plaintext" when nothing matches.
func DetectLanguage(code string) string {
	if reJSKeywords.MatchString(code) && !rePyShape.MatchString(code) {
		if reTSKeywords.MatchString(code) {
			return "typescript"
		}
		return "javascript"
	}

	if rePyShape.MatchString(code) {
		first := strings.SplitN(code, "\n", 2)[0]
		if strings.HasSuffix(strings.TrimRight(first, " \t"), ":") {
			return "python"
		}
	}

	if reJavaKeywords.MatchString(code) && strings.Contains(code, "{") {
		return "java"
	}

	if reGoKeywords.MatchString(code) && reGoFunc.MatchString(code) {
		return "go"
	}

	if reCppMarkers.MatchString(code) {
		return "cpp"
	}

	if reRustKeywords.MatchString(code) && strings.Contains(code, "->") {
		return "rust"
	}

	if reRubyKeywords.MatchString(code) && reRubyEnd.MatchString(code) {
		return "ruby"
	}

	if strings.Contains(code, "<?php") {
		return "php"
	}

	return "plaintext"
}
