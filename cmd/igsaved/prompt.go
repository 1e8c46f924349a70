package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"igsaved/pkg/instagram"
	"igsaved/pkg/models"
	"igsaved/pkg/ui"
)

// errPromptClosed is returned when input ends before an answer was given
var errPromptClosed = errors.New("no input")

// prompter asks questions on a line-oriented terminal
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	// fd is the terminal used for hidden input, or -1 to read secrets as
	// plain lines
	fd int
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

// line prints label and returns the trimmed answer
func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	input, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		if err == io.EOF {
			return "", errPromptClosed
		}
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// secret reads a value without echoing it when attached to a terminal
func (p *prompter) secret(label string) (string, error) {
	if p.fd < 0 {
		return p.line(label)
	}
	fmt.Fprint(p.out, label)
	value, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(value)), nil
}

// confirm asks a yes/no question; only an answer starting with y counts as yes
func (p *prompter) confirm(label string) bool {
	answer, err := p.line(label + " (y/n): ")
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(answer), "y")
}

// sessionID asks for the sessionid cookie
func (p *prompter) sessionID() (string, error) {
	fmt.Fprintln(p.out, "\n📋 To get your session ID:")
	fmt.Fprintln(p.out, "   1. Open Instagram in your browser and log in")
	fmt.Fprintln(p.out, "   2. Press F12 to open Developer Tools")
	fmt.Fprintln(p.out, "   3. Go to Application > Cookies > instagram.com")
	fmt.Fprintln(p.out, "   4. Find 'sessionid' and copy its value")
	fmt.Fprintln(p.out)

	id, err := p.secret("🔑 Paste your Instagram sessionid: ")
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("session ID cannot be empty")
	}
	return id, nil
}

// allPostsLabel names the menu entry for every saved post
const allPostsLabel = "All Saved Posts"

// collection shows the numbered collection menu and returns the chosen
// collection ID and name. Choice 0, or an empty list, selects all saved posts.
func (p *prompter) collection(collections []models.Collection) (string, string, error) {
	if len(collections) == 0 {
		ui.PrintWarning(p.out, "⚠️  No collections found. Using all saved posts.")
		return instagram.AllPostsCollection, allPostsLabel, nil
	}

	line := strings.Repeat("=", 60)
	fmt.Fprintln(p.out, "\n"+line)
	fmt.Fprintln(p.out, "Your Instagram Collections:")
	fmt.Fprintln(p.out, line)
	fmt.Fprintf(p.out, "  0. %s (download everything)\n", allPostsLabel)
	for i, c := range collections {
		name := c.Name
		if name == "" {
			name = "Unnamed"
		}
		fmt.Fprintf(p.out, "  %d. %s (%d posts)\n", i+1, name, c.Count)
	}
	fmt.Fprintln(p.out, line)

	for {
		answer, err := p.line("\n📌 Select collection number (0 for all): ")
		if err != nil {
			return "", "", err
		}
		choice, err := strconv.Atoi(answer)
		if err != nil {
			ui.PrintError(p.out, "❌ Please enter a valid number")
			continue
		}
		if choice < 0 || choice > len(collections) {
			ui.PrintError(p.out, fmt.Sprintf("❌ Invalid choice. Please enter 0-%d", len(collections)))
			continue
		}
		if choice == 0 {
			return instagram.AllPostsCollection, allPostsLabel, nil
		}
		selected := collections[choice-1]
		return selected.ID, selected.Name, nil
	}
}

// limit asks how many posts to export. An empty answer or a non-positive
// number means all of them.
func (p *prompter) limit() (int, error) {
	for {
		answer, err := p.line("How many posts to download? (Enter for all, or a number): ")
		if err != nil {
			return 0, err
		}
		if answer == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(answer)
		if err != nil {
			ui.PrintError(p.out, "❌ Please enter a valid number")
			continue
		}
		if n <= 0 {
			ui.PrintWarning(p.out, "❌ Amount must be positive. Using all posts.")
			return 0, nil
		}
		return n, nil
	}
}
