// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

// Bundled example snippets so the app opens with something reviewable.

const exampleGo = `package main

import "fmt"

// fibonacci returns a closure that yields successive Fibonacci numbers.
func fibonacci() func() int {
	a, b := 0, 1
	return func() int {
		a, b = b, a+b
		return a
	}
}

func main() {
	next := fibonacci()
	for i := 0; i < 10; i++ {
		fmt.Println(next())
	}
}
`

const exampleJavaScript = `function debounce(fn, delay) {
  let timer = null;
  return function (...args) {
    if (timer) clearTimeout(timer);
    timer = setTimeout(() => {
      timer = null;
      fn.apply(this, args);
    }, delay);
  };
}

const onResize = debounce(() => {
  console.log('resized to', window.innerWidth);
}, 150);

window.addEventListener('resize', onResize);
`

const examplePython = `from collections import Counter


def top_words(path, n=10):
    """Return the n most common words in a text file."""
    counts = Counter()
    with open(path) as f:
        for line in f:
            counts.update(line.lower().split())
    return counts.most_common(n)


if __name__ == "__main__":
    for word, count in top_words("input.txt"):
        print(f"{word}: {count}")
`

var examplesByLanguage = map[string]struct {
	code     string
	fileName string
}{
	"go":         {exampleGo, "example.go"},
	"javascript": {exampleJavaScript, "example.js"},
	"python":     {examplePython, "example.py"},
}

// ExampleDocument returns a fresh document with bundled sample code for the
// given language, falling back to the JavaScript example when no sample
// exists for it.
func ExampleDocument(language string) *Document {
	ex, ok := examplesByLanguage[language]
	if !ok {
		language = "javascript"
		ex = examplesByLanguage[language]
	}
	return NewDocument(ex.code, language, ex.fileName)
}
