package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

func printSuccess(w io.Writer, format string, a ...interface{}) {
	_, _ = successColor.Fprintf(w, "✓ "+format+"\n", a...)
}

func printWarning(w io.Writer, format string, a ...interface{}) {
	_, _ = warningColor.Fprintf(w, "⚠ "+format+"\n", a...)
}

func printError(w io.Writer, format string, a ...interface{}) {
	_, _ = errorColor.Fprintf(w, "✗ "+format+"\n", a...)
}

func printHeader(w io.Writer, title string) {
	_, _ = headerColor.Fprintf(w, "▸ %s\n", title)
}

func printDim(w io.Writer, format string, a ...interface{}) {
	_, _ = dimColor.Fprintf(w, format+"\n", a...)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("输出 JSON 失败: %w", err)
	}
	return nil
}
