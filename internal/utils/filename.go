package utils

import (
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// AllowedExtensions is the upload allow-list, lower case without the dot.
var AllowedExtensions = map[string]bool{
	"txt": true, "pdf": true, "png": true, "jpg": true, "jpeg": true, "gif": true,
}

const maxFilenameLen = 200

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

var windowsDeviceNames = map[string]bool{
	"CON": true, "AUX": true, "PRN": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// SecureFilename reduces a client supplied filename to a flat ASCII name
// that is safe to use inside the upload root:
//
//	"../../../etc/passwd.txt" -> "etc_passwd.txt"
//	"My cool movie.mov"       -> "My_cool_movie.mov"
//
// The result may be empty; callers must treat that as invalid input.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)
	var b strings.Builder
	for _, r := range name {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	name = strings.NewReplacer("/", " ", `\`, " ").Replace(b.String())
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")

	if name != "" && windowsDeviceNames[strings.ToUpper(strings.SplitN(name, ".", 2)[0])] {
		name = "_" + name
	}
	if len(name) > maxFilenameLen {
		ext := path.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		name = name[:maxFilenameLen-len(ext)] + ext
	}
	return name
}

// AllowedExtension returns the lower-cased extension of name and whether
// it is on the allow-list.
func AllowedExtension(name string) (string, bool) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return "", false
	}
	ext := strings.ToLower(name[i+1:])
	return ext, AllowedExtensions[ext]
}

// textMetaChars are dropped from free text: markup, quoting and shell
// metacharacters.
const textMetaChars = "<>\"'`;$|&{}"

// SanitizeText neutralises a report name or description.  Path separators
// and ".." become spaces, control characters and metacharacters are
// dropped, whitespace is collapsed and the result is cut to max runes.
//
//	"../../../etc/passwd" -> "etc passwd"
func SanitizeText(s string, max int) string {
	s = norm.NFKC.String(s)
	s = strings.NewReplacer("/", " ", `\`, " ").Replace(s)
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", " ")
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			if unicode.IsSpace(r) {
				return ' '
			}
			return -1
		case strings.ContainsRune(textMetaChars, r):
			return -1
		}
		return r
	}, s)
	s = strings.Trim(strings.Join(strings.Fields(s), " "), " .")
	if max > 0 && utf8.RuneCountInString(s) > max {
		s = strings.TrimSpace(string([]rune(s)[:max]))
	}
	return s
}
