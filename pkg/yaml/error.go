package yaml

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/printer"
	"github.com/goccy/go-yaml/token"
)

func NewPathBuilder() *yaml.PathBuilder {
	return &yaml.PathBuilder{}
}

// ErrorWrapper applies a fixed set of [ErrorOpt]s to every [Error] it wraps.
type ErrorWrapper struct {
	Opts []ErrorOpt
}

func NewErrorWrapper(opts ...ErrorOpt) *ErrorWrapper {
	return &ErrorWrapper{
		Opts: opts,
	}
}

// Wrap wraps an error with additional context for [Error]s.
// If the error isn't an [Error], it returns the original error unmodified.
func (ew *ErrorWrapper) Wrap(err error, opts ...ErrorOpt) error {
	if err == nil {
		return nil
	}

	var yamlErr *Error
	if errors.As(err, &yamlErr) {
		for _, opt := range ew.Opts {
			opt(yamlErr)
		}

		for _, opt := range opts {
			opt(yamlErr)
		}

		return yamlErr
	}

	return err
}

// Error represents a YAML error. It includes the original error, and either
// the [*token.Token] or the [*yaml.Path] where the error occurred.
//
// When Source is set, the message includes the offending lines of the
// source document.
type Error struct {
	Err    error
	Path   *yaml.Path
	Token  *token.Token
	Source []byte
	Color  bool // Print the annotated source with ANSI colors.
}

func NewError(err error, opts ...ErrorOpt) *Error {
	e := &Error{Err: err}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

type ErrorOpt func(e *Error)

func WithPath(path *yaml.Path) ErrorOpt {
	return func(e *Error) {
		e.Path = path
	}
}

func WithToken(tk *token.Token) ErrorOpt {
	return func(e *Error) {
		e.Token = tk
	}
}

func WithSource(source []byte) ErrorOpt {
	return func(e *Error) {
		e.Source = source
	}
}

func WithColor(color bool) ErrorOpt {
	return func(e *Error) {
		e.Color = color
	}
}

func (e Error) Error() string {
	if e.Err == nil {
		return ""
	}
	if e.Path == nil && e.Token == nil {
		return e.Err.Error()
	}

	errMsg, srcErr := e.annotateSource()
	if srcErr != nil {
		slog.Debug("annotate source",
			slog.String("path", e.Path.String()),
			slog.Any("error", srcErr),
		)

		return fmt.Sprintf("error at %s: %v", e.Path.String(), e.Err)
	}

	return errMsg
}

func (e Error) Unwrap() error {
	return e.Err
}

func (e Error) annotateSource() (string, error) {
	tk := e.Token
	if tk == nil {
		var err error

		tk, err = getTokenFromPath(e.Source, e.Path)
		if err != nil {
			return "", fmt.Errorf("get token from path: %w", err)
		}
	}

	errMsg := fmt.Sprintf("[%d:%d] %v", tk.Position.Line, tk.Position.Column, e.Err)
	if len(e.Source) == 0 && e.Token == nil {
		return errMsg, nil
	}

	var pp printer.Printer

	src := strings.TrimRight(pp.PrintErrorToken(tk, e.Color), "\n")
	if src == "" {
		return errMsg, nil
	}

	return fmt.Sprintf("%s:\n%s", errMsg, src), nil
}

func getTokenFromPath(source []byte, path *yaml.Path) (*token.Token, error) {
	if len(source) == 0 {
		return nil, errors.New("no source")
	}

	file, err := parser.ParseBytes(source, 0)
	if err != nil {
		return nil, fmt.Errorf("parse source bytes into ast.File: %w", err)
	}

	node, err := path.FilterFile(file)
	if err != nil {
		return nil, fmt.Errorf("filter from ast.File by YAMLPath: %w", err)
	}

	// FilterFile returns the value node; point at the key when there is one.
	keyToken := findKeyToken(file, path)
	if keyToken != nil {
		return keyToken, nil
	}

	return node.GetToken(), nil
}

// findKeyToken looks up the key token of the last path segment in its
// parent mapping.
func findKeyToken(file *ast.File, path *yaml.Path) *token.Token {
	pathStr := path.String()

	lastDot := strings.LastIndex(pathStr, ".")
	lastBracket := strings.LastIndex(pathStr, "[")

	if lastDot == -1 || lastDot <= lastBracket {
		return nil
	}

	parentPath, err := yaml.PathString(pathStr[:lastDot])
	if err != nil {
		return nil
	}

	parentNode, err := parentPath.FilterFile(file)
	if err != nil {
		return nil
	}

	mapping, ok := parentNode.(*ast.MappingNode)
	if !ok {
		return nil
	}

	for _, val := range mapping.Values {
		if val.Key.String() == pathStr[lastDot+1:] {
			return val.Key.GetToken()
		}
	}

	return nil
}
