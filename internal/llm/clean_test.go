package llm

import "testing"

func TestCleanCases(t *testing.T) {
	const q = "What is the capital of France?"
	cases := []struct {
		name, raw, prompt, want string
	}{
		{"echo and eof banner", q + "\nParis is the capital.\n> EOF by user\n", q, "Paris is the capital."},
		{"leading space before echo", " " + q + " Paris.", q, "Paris."},
		{"trimmed prompt plus question mark", "Name a colour? Blue.", "Name a colour ", "Blue."},
		{"trimmed prompt plus colon", "Answer: 42", "Answer\n", "42"},
		{"no echo", "Just text.", "unrelated", "Just text."},
		{"interactive markers", "> > first\n> second\n>\n", "", "first\nsecond"},
		{"end of text marker", "Done. [end of text]\n", "", "Done."},
		{"ansi colours", "\x1b[32mgreen\x1b[0m text", "", "green text"},
		{"blank runs collapse", "para one\n\n\n\npara two\n", "", "para one\n\npara two"},
		{"marker residue lines dropped", "line\n>>\n  >  \nnext", "", "line\nnext"},
		{"crlf", "a\r\n\r\nb\r\n", "", "a\n\nb"},
		{"markers only", "> \n\n> \n", "x", NoContentPlaceholder},
		{"empty", "", "", NoContentPlaceholder},
		{"punctuation kept", "```\ncode\n```", "", "```\ncode\n```"},
		{"marker after leading space", " > quoted answer", "", "quoted answer"},
		{"banner split by banner", "EOF bEOF by usery user", "", NoContentPlaceholder},
		{"escape split by escape", "\x1b\x1b[0m[0mParis", "", "Paris"},
		{"nested marker after blank", "\n\n> > > deep", "", "deep"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Clean(c.raw, c.prompt); got != c.want {
				t.Fatalf("Clean(%q, %q) = %q, want %q", c.raw, c.prompt, got, c.want)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	const q = "What is the capital of France?"
	inputs := []string{
		q + "\nParis is the capital.\n> EOF by user\n",
		"> > nested\n\n\n\n  indented line  \n>>\n[end of text]",
		"\x1b[1mbold\x1b[0m\n\nsecond paragraph\n",
		"> \n\n",
		"plain",
		" > quoted answer",
		"EOF bEOF by usery user",
		"\x1b\x1b[0m[0mParis",
		"[end [end of text]of text] tail",
		"  \x1b[1m> \x1b[0m answer",
		q + "\n" + q + "\nrepeated echo",
		"> EOF > EOF by userby user\n\n\n> \n",
	}
	for _, in := range inputs {
		once := Clean(in, q)
		twice := Clean(once, q)
		if once != twice {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
