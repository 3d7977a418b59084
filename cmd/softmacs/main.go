// Command softmacs is the read-eval-print driver over the softmacs
// runtime. It reads a line (continuing across lines while the reader
// reports an unclosed list), feeds it to read, evaluates each top-level
// value in a persistent base environment, and prints every result with a
// numbered binding label. Errors abort only the current line.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	softmacs "github.com/xkapastel/softmacs"
)

const appName = "softmacs"

var banner = fmt.Sprintf("softmacs %s\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", softmacs.Version)

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(2)
	}
	os.Exit(repl(cfg))
}

// repl owns the interpreter, the retained bindings (which double as the
// collector's root set) and the line editor.
func repl(cfg Config) int {
	fmt.Println(banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := cfg.historyPath()
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	ip := softmacs.New(cfg.Capacity)
	env, err := ip.BaseEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, paint(red, err.Error(), cfg))
		return 1
	}

	var bindings []softmacs.Gc // $0, $1, ...; also the gc roots
	uid := 0

	for {
		src, ok := readForm(ln, cfg.Prompt, cfg.ContPrompt)
		if !ok {
			fmt.Println()
			return 0
		}
		code := strings.TrimSpace(src)
		if code == "" {
			continue
		}

		if strings.HasPrefix(code, ":") {
			switch strings.ToLower(code) {
			case ":quit":
				return 0
			case ":gc":
				roots := append([]softmacs.Gc{env}, bindings...)
				reclaimed, err := ip.Collect(roots...)
				if err != nil {
					fmt.Fprintln(os.Stderr, paint(red, err.Error(), cfg))
					continue
				}
				fmt.Printf("[gc] reclaimed %d slots\n", reclaimed)
			default:
				fmt.Println("unknown command. Type :quit to exit, :gc to collect.")
			}
			continue
		}

		values, err := ip.Read(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, paint(red, softmacs.WrapErrorWithSource(err, src).Error(), cfg))
			continue
		}
		for _, ptr := range values {
			result, err := ip.Eval(ptr, env)
			if err != nil {
				fmt.Fprintln(os.Stderr, paint(red, err.Error(), cfg))
				break
			}
			var buf strings.Builder
			if err := ip.Show(result, &buf); err != nil {
				fmt.Fprintln(os.Stderr, paint(red, err.Error(), cfg))
				break
			}
			fmt.Printf("$%d = %s\n", uid, paint(blue, buf.String(), cfg))
			bindings = append(bindings, result)
			uid++
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	}
}

// readForm keeps prompting while the reader reports an unclosed list, so
// a form can span lines. The probe parses into a scratch heap so the
// session heap only sees the final read. Any other read error returns the
// text as-is and lets the main loop report it.
func readForm(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		probe := softmacs.New(2*len(src) + 16)
		if _, err := probe.Read(src); softmacs.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}

func paint(color func(string) string, s string, cfg Config) string {
	if !cfg.Color {
		return s
	}
	return color(s)
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".softmacs_history"
	}
	return filepath.Join(home, ".softmacs_history")
}
