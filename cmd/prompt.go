package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/spigell/interview-coach/internal/resume"
	"github.com/spigell/interview-coach/internal/roles"
	"github.com/spigell/interview-coach/internal/suggestions"
	"github.com/spigell/interview-coach/internal/verification"
)

const (
	PromptAcknowledge  = "Got it, start the interview"
	PromptChangeRole   = "Change role"
	PromptUploadResume = "Upload new resume"
	PromptRetry        = "Retry"
	PromptExit         = "Exit"
)

var errExit = errors.New("exit requested")

func askText(label, def string) (string, error) {
	p := promptui.Prompt{
		Label:   label,
		Default: def,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("value is required")
			}
			return nil
		},
	}
	value, err := p.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func askSelect(label string, items ...string) (string, error) {
	p := promptui.Select{Label: label, Items: items}
	_, value, err := p.Run()
	return value, err
}

// askResume asks for a resume path until the file passes upload validation.
func askResume(path string) (resume.Upload, error) {
	for {
		if path == "" {
			var err error
			path, err = askText("Resume file (PDF or DOCX)", "")
			if err != nil {
				return resume.Upload{}, err
			}
		}

		upload, err := readUpload(path)
		if err == nil {
			return upload, nil
		}

		fmt.Printf("%s\n", uploadMessage(err))
		path = ""
	}
}

func readUpload(path string) (resume.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return resume.Upload{}, err
	}
	upload := resume.Upload{FileName: filepath.Base(path), Data: data}
	if err := upload.Validate(); err != nil {
		return resume.Upload{}, err
	}
	return upload, nil
}

func uploadMessage(err error) string {
	if errors.Is(err, os.ErrNotExist) {
		return "File not found. Please check the path."
	}
	return resume.Message(err)
}

func printNotice(n verification.Notice) {
	fmt.Printf("[%s] %s\n", n.Level, n.Message)
}

func printAutoConfig(cfg roles.AutoConfig) {
	fmt.Printf("Interview: %s, difficulty: %s\n", cfg.InterviewType, cfg.Difficulty)
	if len(cfg.Rounds) > 0 {
		fmt.Printf("Typical rounds: %s\n", strings.Join(cfg.Rounds, ", "))
	}
}

func printSuggestions(items []suggestions.Suggestion) {
	fmt.Println("Suggestions to improve your resume:")
	for i, s := range items {
		fmt.Printf("%d. %s (priority %d)\n   %s\n", i+1, s.Title, s.Priority, s.Description)
		for _, tip := range s.ImplementationTips {
			fmt.Printf("   - %s\n", tip)
		}
	}
}

// readLines feeds lines from r into a channel until EOF. Once started it owns
// the reader, so no prompt may read stdin afterwards.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
