package telegram

import "strings"

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape makes s safe inside an HTML parse-mode message.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}
