// builtin_regex.go
//
// The Regex namespace: compiled regular expressions as first-class values.
//
//   - Regex.create(pattern) -> Regex
//   - Regex.test(regex, text) -> Bool
//
// Patterns use Go's RE2 syntax. Compilation failures are runtime errors at
// the create call; a compiled regex is immutable and can be reused freely.

package pawx

import "regexp"

func registerRegexBuiltins(ip *Interpreter) {
	ns := ip.namespace("Regex")

	ns.fn("create", []string{"pattern"}, func(_ *Interpreter, ctx CallCtx) Value {
		pattern := argStr(ctx, "pattern", "Regex.create")
		re, err := regexp.Compile(pattern)
		if err != nil {
			fail("Regex.create: invalid pattern: " + err.Error())
		}
		return RegexVal(re)
	})

	ns.fn("test", []string{"regex", "text"}, func(_ *Interpreter, ctx CallCtx) Value {
		re := argRegex(ctx, "regex", "Regex.test")
		text := argStr(ctx, "text", "Regex.test")
		return Bool(re.MatchString(text))
	})

	ns.install()
}

func argRegex(ctx CallCtx, name, fn string) *regexp.Regexp {
	v, ok := ctx.Arg(name)
	if !ok || v.Tag != VTRegex {
		failType(fn + " expects " + name + ": Regex")
	}
	return v.Data.(*regexp.Regexp)
}
