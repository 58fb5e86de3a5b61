package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

func readYes(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.TrimSpace(strings.ToLower(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// Confirm asks a yes/no question and reports whether the user answered yes.
func Confirm(prompt string) bool {
	return readYes(StyleWarning.Render(prompt))
}

// ConfirmDanger asks the same question in the error color. Use it before
// anything irreversible, like revealing or deleting a key.
func ConfirmDanger(prompt string) bool {
	return readYes(StyleError.Render("⚠ " + prompt))
}
