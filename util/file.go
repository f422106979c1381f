package util

import (
	"os"
	"strings"
)

// WriteToFile replaces savePath with the lines of content
func WriteToFile(savePath string, content ...string) error {
	out := strings.Join(content, "\n")
	if len(content) > 0 {
		out += "\n"
	}
	return os.WriteFile(savePath, []byte(out), 0644)
}

// AppendToFile appends every string of content to savePath as a line
func AppendToFile(savePath string, content ...string) error {
	f, err := os.OpenFile(savePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return err
	}

	defer f.Close()

	for _, s := range content {
		if _, err = f.WriteString(s + "\n"); err != nil {
			return err
		}
	}
	return nil
}
