package main

import (
	"strings"

	dm "github.com/iWorld-y/company_radar/app/company_radar/pkg/model"
)

// parseResearchArgs 解析 ":research" 之后的参数，名称中有空格时用双引号包裹
func parseResearchArgs(raw string) (dm.Subject, bool) {
	fields := splitQuoted(strings.TrimSpace(raw))
	if len(fields) == 0 || len(fields) > 3 {
		return dm.Subject{}, false
	}
	s := dm.Subject{Name: fields[0]}
	if len(fields) > 1 {
		s.Domain = fields[1]
	}
	if len(fields) > 2 {
		s.Ticker = fields[2]
	}
	return s, strings.TrimSpace(s.Name) != ""
}

func splitQuoted(s string) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			if !inQuote {
				flush()
			}
		case r == ' ' && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return fields
}
