package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/buger/goterm"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

var (
	// Colors for different types of output
	userInputColor = color.New(color.FgWhite)               // White for user input
	aiOutputColor  = color.New(color.FgCyan)                // Cyan for AI responses
	titleColor     = color.New(color.FgMagenta, color.Bold) // Bold magenta for titles
	noticeColor    = color.New(color.FgYellow)              // Yellow for informational notices
	promptColor    = color.New(color.FgHiBlue)              // Bright blue for prompts

	width = goterm.Width()
)

// Title printed to cli.
func Title(text string, args ...any) {
	title := "      " + fmt.Sprintf(text, args...) + "      "
	leftWidth := (width - len(title)) / 2
	if leftWidth < 0 {
		leftWidth = 0
	}
	rightWidth := width - len(title) - leftWidth
	if rightWidth < 0 {
		rightWidth = 0
	}
	titleColor.Println(strings.Repeat("-", leftWidth) + title + strings.Repeat("-", rightWidth))
}

// UserInput printed to cli.
func UserInput(text string, args ...any) {
	userInputColor.Printf(text, args...)
}

// AIOutput printed to cli. Without args the text is printed verbatim, so
// streamed tokens containing % are never treated as format verbs.
func AIOutput(text string, args ...any) {
	if len(args) == 0 {
		aiOutputColor.Print(text)
		return
	}
	aiOutputColor.Printf(text, args...)
}

// Notice printed to cli.
func Notice(text string, args ...any) {
	noticeColor.Printf(text, args...)
}

// PromptUser for input.
func PromptUser() (string, error) {
	config := &readline.Config{
		Prompt:            promptColor.Sprint("> "),
		InterruptPrompt:   "^C",
		HistoryFile:       "/tmp/rchat.history",
		HistorySearchFold: true,
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		return "", err
	}
	defer rl.Close()
	line, err := rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// QueryUser a yes/no question.
func QueryUser(question string) bool {
	surveyQuestion := &survey.Confirm{
		Message: question,
	}
	confirm := false
	survey.AskOne(surveyQuestion, &confirm)
	return confirm
}
