// Package htaccess maintains the module's section of the web server access file.
// The section forbids direct download of original product photos unless the request comes from the back office.
package htaccess

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const (
	startKey = "\n# start ~ module watermark section"
	endKey   = "# end ~ module watermark section\n"
)

var ErrSectionNotFound = errors.New("watermark section not found in access file")

// AdminDirName returns the last element of the back office path, "admin123" for "/var/www/admin123".
func AdminDirName(adminPath string) string {
	parts := strings.Split(strings.ReplaceAll(adminPath, `\`, "/"), "/")
	if len(parts) > 1 {
		return parts[len(parts)-1]
	}
	return adminPath
}

// Section renders the block for the given back office directory name.
func Section(adminDir string) string {
	return startKey + "\n" +
		"<IfModule mod_rewrite.c>\n" +
		"RewriteEngine On\n" +
		`RewriteCond expr "! %{HTTP_REFERER} -strmatch '*://%{HTTP_HOST}*/` + adminDir + `/*'"` + "\n" +
		`RewriteRule [0-9/]+/[0-9]+\.jpg$ - [F]` + "\n" +
		"</IfModule>\n" +
		endKey
}

// WriteSection puts the block in front of the existing rules, creating the file when needed.
func WriteSection(path, adminDir string) error {
	old, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %q: %w", path, err)
	}

	if err := os.WriteFile(path, append([]byte(Section(adminDir)), old...), 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

// RemoveSection cuts the first block out of the file. A missing file is not an error.
func RemoveSection(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}

	s := string(data)
	p1 := strings.Index(s, startKey)
	if p1 < 0 {
		return ErrSectionNotFound
	}
	p2 := strings.Index(s[p1:], endKey)
	if p2 < 0 {
		return ErrSectionNotFound
	}
	p2 += p1

	if err := os.WriteFile(path, []byte(s[:p1]+s[p2+len(endKey):]), 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

// Rewrite replaces the block with a fresh one, used whenever the settings are saved.
func Rewrite(path, adminDir string) error {
	if err := RemoveSection(path); err != nil && !errors.Is(err, ErrSectionNotFound) {
		return err
	}
	return WriteSection(path, adminDir)
}
