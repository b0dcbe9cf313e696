package web

import (
	"fmt"
	"html/template"
	"strings"
)

var funcs = template.FuncMap{
	"price":      price,
	"rating":     func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"stars":      stars,
	"difficulty": difficultyLabel,
	"contains":   contains,
	"join":       strings.Join,
}

func price(v float64) string {
	if v == 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", v)
}

func stars(v float64) string {
	n := int(v + 0.5)
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func difficultyLabel(level string) string {
	if level == "" {
		return ""
	}
	return strings.ToUpper(level[:1]) + level[1:]
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
