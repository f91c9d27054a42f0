package compiler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/microsoft/typescript-go/shim/ast"
	shimscanner "github.com/microsoft/typescript-go/shim/scanner"
)

// DiagnosticCategory mirrors the compiler's diagnostic categories without
// importing its internal diagnostics package.
type DiagnosticCategory int

const (
	CategoryWarning    DiagnosticCategory = 0
	CategoryError      DiagnosticCategory = 1
	CategorySuggestion DiagnosticCategory = 2
	CategoryMessage    DiagnosticCategory = 3
)

func (c DiagnosticCategory) Name() string {
	switch c {
	case CategoryError:
		return "error"
	case CategoryWarning:
		return "warning"
	case CategorySuggestion:
		return "suggestion"
	case CategoryMessage:
		return "message"
	}
	return "unknown"
}

const (
	colorReset  = "\u001b[0m"
	colorRed    = "\u001b[91m"
	colorYellow = "\u001b[93m"
	colorBlue   = "\u001b[94m"
	colorCyan   = "\u001b[96m"
	colorGrey   = "\u001b[90m"
	colorGutter = "\u001b[7m"
)

func categoryColor(cat DiagnosticCategory) string {
	switch cat {
	case CategoryError:
		return colorRed
	case CategoryWarning:
		return colorYellow
	case CategorySuggestion:
		return colorGrey
	case CategoryMessage:
		return colorBlue
	}
	return ""
}

// Category extracts a diagnostic's category.
func Category(d *ast.Diagnostic) DiagnosticCategory {
	return DiagnosticCategory(ast.Diagnostic_Category(d))
}

// CountErrors returns the number of error-category diagnostics.
func CountErrors(diags []*ast.Diagnostic) int {
	count := 0
	for _, d := range diags {
		if Category(d) == CategoryError {
			count++
		}
	}
	return count
}

// IsPrettyOutput decides colored output: NO_COLOR wins, FORCE_COLOR
// overrides, otherwise stderr must be a terminal.
func IsPrettyOutput() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Reporter renders diagnostics in tsc style: plain
// "file(line,col): category TScode: message" lines, or colored output with
// code snippets when pretty.
type Reporter struct {
	w      io.Writer
	cwd    string
	pretty bool
}

// NewReporter creates a Reporter writing to w, with file paths shown
// relative to cwd.
func NewReporter(w io.Writer, cwd string, pretty bool) *Reporter {
	return &Reporter{w: w, cwd: cwd, pretty: pretty}
}

// Report writes one diagnostic.
func (r *Reporter) Report(d *ast.Diagnostic) {
	if r.pretty {
		r.writePretty(d)
		fmt.Fprint(r.w, "\n")
		return
	}
	r.writePlain(d)
}

// ReportAll writes every diagnostic, followed by the error summary when
// pretty.
func (r *Reporter) ReportAll(diags []*ast.Diagnostic) {
	for _, d := range diags {
		r.Report(d)
	}
	if r.pretty {
		r.writeSummary(diags)
	}
}

func (r *Reporter) writePlain(d *ast.Diagnostic) {
	if d.File() != nil {
		line, char := shimscanner.GetECMALineAndCharacterOfPosition(d.File(), d.Pos())
		fmt.Fprintf(r.w, "%s(%d,%d): ", r.relative(d.File().FileName()), line+1, char+1)
	}
	fmt.Fprintf(r.w, "%s TS%d: %s\n", Category(d).Name(), d.Code(), d.String())
}

func (r *Reporter) writePretty(d *ast.Diagnostic) {
	cat := Category(d)

	if d.File() != nil {
		line, char := shimscanner.GetECMALineAndCharacterOfPosition(d.File(), d.Pos())
		fmt.Fprintf(r.w, "%s%s%s:%s%d%s:%s%d%s - ",
			colorCyan, r.relative(d.File().FileName()), colorReset,
			colorYellow, line+1, colorReset,
			colorYellow, char+1, colorReset)
	}

	fmt.Fprintf(r.w, "%s%s%s %sTS%d:%s %s",
		categoryColor(cat), cat.Name(), colorReset,
		colorGrey, d.Code(), colorReset,
		d.String())

	if d.File() != nil && d.Len() > 0 {
		fmt.Fprint(r.w, "\n")
		r.writeSnippet(d.File(), d.Pos(), d.Len(), categoryColor(cat))
		fmt.Fprint(r.w, "\n")
	}
}

// writeSnippet prints the source context with gutter line numbers and
// squiggles under the diagnostic span. Runs of interior lines collapse to
// "..." once the span covers five or more lines.
func (r *Reporter) writeSnippet(file *ast.SourceFile, start int, length int, squiggleColor string) {
	firstLine, firstLineChar := shimscanner.GetECMALineAndCharacterOfPosition(file, start)
	lastLine, lastLineChar := shimscanner.GetECMALineAndCharacterOfPosition(file, start+length)
	if length == 0 {
		lastLineChar++
	}

	text := file.Text()
	lastLineOfFile := shimscanner.GetECMALineOfPosition(file, len(text))

	collapse := lastLine-firstLine >= 4
	gutterWidth := len(strconv.Itoa(lastLine + 1))
	if collapse && len("...") > gutterWidth {
		gutterWidth = len("...")
	}

	for i := firstLine; i <= lastLine; i++ {
		if collapse && firstLine+1 < i && i < lastLine-1 {
			fmt.Fprintf(r.w, "%s%*s%s \n", colorGutter, gutterWidth, "...", colorReset)
			i = lastLine - 1
		}

		lineStart := shimscanner.GetECMAPositionOfLineAndCharacter(file, i, 0)
		lineEnd := len(text)
		if i < lastLineOfFile {
			lineEnd = shimscanner.GetECMAPositionOfLineAndCharacter(file, i+1, 0)
		}

		lineContent := strings.TrimRightFunc(text[lineStart:lineEnd], unicode.IsSpace)
		lineContent = strings.ReplaceAll(lineContent, "\t", " ")

		fmt.Fprintf(r.w, "%s%*d%s %s\n", colorGutter, gutterWidth, i+1, colorReset, lineContent)

		fmt.Fprintf(r.w, "%s%*s%s ", colorGutter, gutterWidth, "", colorReset)
		fmt.Fprint(r.w, squiggleColor)
		switch i {
		case firstLine:
			last := lastLineChar
			if i != lastLine {
				last = len(lineContent)
			}
			fmt.Fprint(r.w, strings.Repeat(" ", firstLineChar))
			n := last - firstLineChar
			if n < 1 {
				n = 1
			}
			fmt.Fprint(r.w, strings.Repeat("~", n))
		case lastLine:
			if lastLineChar > 0 {
				fmt.Fprint(r.w, strings.Repeat("~", lastLineChar))
			}
		default:
			fmt.Fprint(r.w, strings.Repeat("~", len(lineContent)))
		}
		fmt.Fprint(r.w, colorReset)
	}
}

// writeSummary prints the "Found N errors" trailer.
func (r *Reporter) writeSummary(diags []*ast.Diagnostic) {
	errorCount := 0
	var firstErrorFile *ast.SourceFile
	var firstErrorPos int
	fileErrors := make(map[string]int)

	for _, d := range diags {
		if Category(d) != CategoryError {
			continue
		}
		errorCount++
		if errorCount == 1 && d.File() != nil {
			firstErrorFile = d.File()
			firstErrorPos = d.Pos()
		}
		if d.File() != nil {
			fileErrors[d.File().FileName()]++
		}
	}

	if errorCount == 0 {
		return
	}

	fmt.Fprint(r.w, "\n")
	switch {
	case errorCount == 1 && firstErrorFile != nil:
		line := shimscanner.GetECMALineOfPosition(firstErrorFile, firstErrorPos)
		fmt.Fprintf(r.w, "Found 1 error in %s%s:%d%s\n",
			r.relative(firstErrorFile.FileName()), colorGrey, line+1, colorReset)
	case errorCount == 1:
		fmt.Fprintln(r.w, "Found 1 error.")
	case len(fileErrors) <= 1 && firstErrorFile != nil:
		line := shimscanner.GetECMALineOfPosition(firstErrorFile, firstErrorPos)
		fmt.Fprintf(r.w, "Found %d errors in the same file, starting at: %s%s:%d%s\n",
			errorCount, r.relative(firstErrorFile.FileName()), colorGrey, line+1, colorReset)
	case len(fileErrors) <= 1:
		fmt.Fprintf(r.w, "Found %d errors.\n", errorCount)
	default:
		fmt.Fprintf(r.w, "Found %d errors in %d files.\n", errorCount, len(fileErrors))
	}
	fmt.Fprint(r.w, "\n")
}

func (r *Reporter) relative(absPath string) string {
	if r.cwd == "" {
		return absPath
	}
	rel, err := filepath.Rel(r.cwd, absPath)
	if err != nil {
		return absPath
	}
	return rel
}
