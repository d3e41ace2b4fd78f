package service

import "strings"

// RenderTemplate substitutes {placeholder} tokens in a message template.
// Empty values render as "there" so greetings still read naturally.
func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		if v == "" {
			v = "there"
		}
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}
