package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ananthvk/filecabinet"
	"github.com/ananthvk/filecabinet/internal/validation"
	"github.com/armon/go-radix"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/afero"
)

// App owns everything a console session needs. Nothing is shared between App values
type App struct {
	service   filecabinet.Service
	validator validation.Validator
	fs        afero.Fs
	in        *bufio.Reader
	out       io.Writer
	printer   Printer
	commands  *radix.Tree
	running   bool
}

// New creates a console session reading commands from in and writing to out. The validator is used
// for prompt-time checks of single fields, the service validates whole records again
func New(service filecabinet.Service, validator validation.Validator, fs afero.Fs, in io.Reader, out io.Writer) *App {
	return &App{
		service:   service,
		validator: validator,
		fs:        fs,
		in:        bufio.NewReader(in),
		out:       out,
		printer:   DefaultPrinter{},
		commands:  newCommandTree(),
		running:   true,
	}
}

// SetPrinter replaces the printer used by list and find
func (a *App) SetPrinter(p Printer) {
	a.printer = p
}

// Running is false once the exit command ran
func (a *App) Running() bool {
	return a.running
}

// Run reads and executes commands until exit is entered or the input ends
func (a *App) Run() error {
	for a.running {
		fmt.Fprint(a.out, "> ")
		line, err := a.readLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.out)
			return nil
		}
		if err != nil {
			return err
		}
		a.Execute(line)
	}
	return nil
}

// Execute runs a single command line. Errors are reported to the output, the session goes on
func (a *App) Execute(line string) {
	args, err := shellquote.Split(line)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", err)
		return
	}
	if len(args) == 0 {
		return
	}
	cmd, err := a.lookup(args[0])
	if err != nil {
		fmt.Fprintln(a.out, err)
		return
	}
	slog.Debug("executing command", "command", cmd.name, "args", args[1:])
	if err := cmd.handler(a, args[1:]); err != nil {
		if errors.Is(err, io.EOF) {
			a.running = false
			return
		}
		fmt.Fprintf(a.out, "Error: %s\n", err)
	}
}

// readLine returns the next input line without the line terminator. A last line without a
// terminator is returned before io.EOF
func (a *App) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
