package header

import (
	"strconv"
	"strings"

	"github.com/mkgrgis-go/ripmime/internal/defect"
)

// ParseParamString splits a header value of the form
// "leading-token; name=value; name2=\"value 2\"" into the leading token
// and a map of lowercased parameter names to values, tolerating (and
// registering defects for) the malformations spec §4.2 lists.
//
// Grounded on mime_headers.c's MIMEH_parse_header_parameter, which scans
// byte-by-byte rather than splitting naively on ';' (a naive split breaks
// on quoted values that themselves contain ';').
func ParseParamString(s string, d *defect.Set) (lead string, params map[string]string) {
	lead, rest := splitLead(s)
	params = make(map[string]string)

	i, n := 0, len(rest)
	for i < n {
		for i < n && (rest[i] == ';' || isSpace(rest[i])) {
			i++
		}
		if i >= n {
			break
		}

		nameStart := i
		for i < n && rest[i] != '=' && rest[i] != ';' && !isSpace(rest[i]) {
			i++
		}
		name := rest[nameStart:i]

		for i < n && isSpace(rest[i]) {
			i++
		}

		hadEquals := false
		if i < n && rest[i] == '=' {
			hadEquals = true
			i++
			for i < n && rest[i] == '=' {
				d.Add(defect.MultipleEqualsSeparators)
				i++
			}
		}
		for i < n && isSpace(rest[i]) {
			i++
		}

		var value string
		switch {
		case !hadEquals:
			d.Add(defect.MissingSeparators)
			valStart := i
			for i < n && rest[i] != ';' {
				i++
			}
			value = strings.TrimSpace(rest[valStart:i])

		case i < n && rest[i] == '"':
			i++
			for i < n && rest[i] == '"' {
				d.Add(defect.MultipleQuotes)
				i++
			}
			valStart := i
			closed := false
			for i < n {
				if rest[i] == '"' {
					closed = true
					break
				}
				i++
			}
			if closed {
				value = rest[valStart:i]
				i++
				for i < n && rest[i] == '"' {
					d.Add(defect.MultipleQuotes)
					i++
				}
			} else {
				d.Add(defect.UnbalancedQuotes)
				value = strings.TrimSpace(rest[valStart:])
				i = n
			}

		default:
			valStart := i
			for i < n && rest[i] != ';' && !isSpace(rest[i]) {
				i++
			}
			value = rest[valStart:i]
		}

		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := params[key]; dup && !isExtKeyCandidate(key) {
			d.Add(defect.MultipleFieldOccurrence)
		}
		params[key] = value
	}

	return lead, AssembleRFC2231(params)
}

// splitLead finds the first ';' not inside a double-quoted region and
// returns the text before it (trimmed) and the remainder (unconsumed).
func splitLead(s string) (lead, rest string) {
	inQuotes := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ';':
			if !inQuotes {
				return strings.TrimSpace(s[:i]), s[i+1:]
			}
		}
	}
	return strings.TrimSpace(s), ""
}

func isExtKeyCandidate(key string) bool { return strings.Contains(key, "*") }

// AssembleRFC2231 finds parameters using the RFC 2231 continuation syntax
// (name*n*=<charset>'<lang>'<pct-value>, name*n=<value>, or the bare
// name*=<pct-value> shorthand for name*0*=...) among params, decodes and
// concatenates each family in index order, and folds the result back into
// params under the plain (non-starred) key. Non-continuation params pass
// through untouched.
type rfc2231Seg struct {
	idx      int
	extended bool
	value    string
}

func AssembleRFC2231(params map[string]string) map[string]string {
	groups := make(map[string][]rfc2231Seg)
	plain := make(map[string]string, len(params))

	for key, value := range params {
		if !strings.Contains(key, "*") {
			plain[key] = value
			continue
		}
		base, idx, extended, ok := parseExtKey(key)
		if !ok {
			plain[key] = value
			continue
		}
		groups[base] = append(groups[base], rfc2231Seg{idx: idx, extended: extended, value: value})
	}

	for base, segs := range groups {
		sortSegs(segs)
		var sb strings.Builder
		charsetSeen := ""
		for i, sg := range segs {
			v := sg.value
			if sg.extended {
				if i == 0 {
					if cs, _, rest, ok := splitCharsetLang(v); ok {
						charsetSeen = cs
						v = rest
					}
				}
				v = percentDecode(v)
			}
			sb.WriteString(v)
		}
		_ = charsetSeen // charset is recorded by the caller via Record.Charset if needed
		plain[base] = sb.String()
	}
	return plain
}

// parseExtKey parses a parameter key using the RFC 2231 continuation
// grammar: name["*"digits]["*"]. Returns ok=false if key doesn't match
// this grammar (e.g. a stray "*" in a non-continuation name).
func parseExtKey(key string) (base string, idx int, extended bool, ok bool) {
	parts := strings.Split(key, "*")
	switch len(parts) {
	case 2:
		base = parts[0]
		if parts[1] == "" {
			return base, 0, true, true
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return "", 0, false, false
		}
		return base, n, false, true
	case 3:
		base = parts[0]
		if parts[2] != "" {
			return "", 0, false, false
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return "", 0, false, false
		}
		return base, n, true, true
	default:
		return "", 0, false, false
	}
}

func sortSegs(segs []rfc2231Seg) {
	for i := 1; i < len(segs); i++ {
		for j := i; j > 0 && segs[j-1].idx > segs[j].idx; j-- {
			segs[j-1], segs[j] = segs[j], segs[j-1]
		}
	}
}

// splitCharsetLang splits "<charset>'<lang>'<rest>" into its parts.
func splitCharsetLang(v string) (charset, lang, rest string, ok bool) {
	first := strings.IndexByte(v, '\'')
	if first < 0 {
		return "", "", v, false
	}
	second := strings.IndexByte(v[first+1:], '\'')
	if second < 0 {
		return "", "", v, false
	}
	second += first + 1
	return v[:first], v[first+1 : second], v[second+1:], true
}

// percentDecode decodes %XX escapes in v, passing through anything else
// (including a lone stray '%') unchanged.
func percentDecode(v string) string {
	var out []byte
	for i := 0; i < len(v); i++ {
		if v[i] == '%' && i+2 < len(v) {
			if hi, ok := hexVal(v[i+1]); ok {
				if lo, ok := hexVal(v[i+2]); ok {
					out = append(out, hi<<4|lo)
					i += 2
					continue
				}
			}
		}
		out = append(out, v[i])
	}
	return string(out)
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
