// Package filename generates evio output file names from a template
// string and a run/stream/split context (spec.md §4.I).
package filename

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/jlab-evio/evio/evioerr"
)

// Context carries the values a template's substitutions draw from.
type Context struct {
	RunNumber   int
	SplitNumber int
	StreamID    int
	StreamCount int
	RunType     string
	// Splitting reports whether file splitting is enabled for this
	// writer; it governs whether a missing split-number specifier is
	// auto-appended to the template.
	Splitting bool
}

var (
	envVarPattern  = regexp.MustCompile(`\$\(([^)]+)\)`)
	intSpecPattern = regexp.MustCompile(`%[-+ 0#]*[0-9]*d`)
)

// Generate produces a file name from template and ctx, following
// spec.md §4.I's four-step substitution order:
//  1. $(ENV_VAR) -> environment variable value (empty if unset).
//  2. A single %s -> ctx.RunType.
//  3. Up to three int specifiers (%d and its width/flag variants),
//     assigned positionally in template order to run number, stream id,
//     split number. When splitting or streaming is enabled and the
//     template doesn't already supply enough specifiers, the missing
//     run number and/or split number specifiers are auto-appended
//     (stream id has no auto-appended specifier of its own — see step 4).
//  4. If ctx.StreamCount > 1, a ".streamN" suffix is appended unless the
//     template already embeds the word "stream".
//
// Returns *evioerr.Error{Kind: BadTemplate} if more than three int
// specifiers are present at any point.
func Generate(template string, ctx Context) (string, error) {
	result := envVarPattern.ReplaceAllStringFunc(template, func(m string) string {
		name := envVarPattern.FindStringSubmatch(m)[1]
		return os.Getenv(name)
	})

	if idx := strings.Index(result, "%s"); idx >= 0 {
		result = result[:idx] + ctx.RunType + result[idx+2:]
	}

	hadStreamWord := strings.Contains(strings.ToLower(result), "stream")

	preMatches := intSpecPattern.FindAllString(result, -1)
	if len(preMatches) > 3 {
		return "", evioerr.New(evioerr.KindBadTemplate, "file name template has more than three integer format specifiers")
	}

	fixedValues := []int{ctx.RunNumber, ctx.StreamID, ctx.SplitNumber}
	values := append([]int(nil), fixedValues[:len(preMatches)]...)
	count := len(preMatches)

	needAppend := ctx.Splitting || ctx.StreamCount > 1
	if needAppend && count == 0 {
		result += "_%d"
		values = append(values, ctx.RunNumber)
		count++
	}
	if ctx.Splitting && count < 3 {
		result += "_%d"
		values = append(values, ctx.SplitNumber)
		count++
	}

	matches := intSpecPattern.FindAllStringIndex(result, -1)
	if len(matches) > 3 {
		return "", evioerr.New(evioerr.KindBadTemplate, "file name template has more than three integer format specifiers")
	}

	result = substituteInts(result, matches, values)

	if ctx.StreamCount > 1 && !hadStreamWord {
		result += ".stream" + strconv.Itoa(ctx.StreamID)
	}

	return result, nil
}

// substituteInts replaces each located int specifier with the
// corresponding entry from values, formatting with the specifier's own
// flags/width.
func substituteInts(s string, matches [][]int, values []int) string {
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	prev := 0
	for i, m := range matches {
		b.WriteString(s[prev:m[0]])
		spec := s[m[0]:m[1]]
		v := 0
		if i < len(values) {
			v = values[i]
		}
		b.WriteString(formatIntSpec(spec, v))
		prev = m[1]
	}
	b.WriteString(s[prev:])

	return b.String()
}

// formatIntSpec expands one "%[flags][width]d" specifier against v using
// strconv and manual padding, avoiding a second pass through fmt.Sprintf
// (which would choke on literal '%' characters still present elsewhere
// in the template at this point).
func formatIntSpec(spec string, v int) string {
	body := spec[1 : len(spec)-1] // strip leading % and trailing d

	zeroPad := strings.HasPrefix(body, "0")
	width := 0
	digits := strings.TrimLeft(body, "0+- #")
	if digits != "" {
		if w, err := strconv.Atoi(digits); err == nil {
			width = w
		}
	}

	out := strconv.Itoa(v)
	if width > len(out) {
		pad := strings.Repeat(" ", width-len(out))
		if zeroPad {
			pad = strings.Repeat("0", width-len(out))
		}
		out = pad + out
	}

	return out
}
