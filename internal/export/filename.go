package export

import (
	"regexp"
	"strings"
)

// DefaultFileName is used when a title has no usable characters.
const DefaultFileName = "DDS_Seguranca"

const fileExtension = ".pdf"

var nonFileChar = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// FileName derives the download name from a report title: only ASCII letters
// and digits survive, lowercased.
func FileName(title string) string {
	s := strings.ToLower(nonFileChar.ReplaceAllString(title, ""))
	if s == "" {
		s = DefaultFileName
	}
	return s + fileExtension
}
