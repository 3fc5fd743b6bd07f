//go:build !noxml

package codec

import "strings"

// escapeXMLText escapes the basic XML entities for text content.
func escapeXMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// escapeXMLAttr escapes text for use in XML attributes.
// Includes quote escaping in addition to basic XML entities.
func escapeXMLAttr(s string) string {
	s = escapeXMLText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}
