package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"resume-formatter/internal/config"
	"resume-formatter/internal/domain"
	"resume-formatter/internal/logger"
	"resume-formatter/internal/model"
	"resume-formatter/internal/usecase"
	infra "resume-formatter/pkg/infrastructure"

	"github.com/spf13/pflag"
)

func main() {
	in := pflag.StringP("in", "i", "-", "resume text file, - for stdin")
	role := pflag.StringP("role", "r", "", "target role")
	format := pflag.StringP("format", "f", "labeled", "output format: labeled, json, html or pdf")
	out := pflag.StringP("out", "o", "", "output file (default stdout; required for pdf)")
	chromePath := pflag.String("chrome", os.Getenv("CHROME_PATH"), "chrome executable for pdf output")
	timeout := pflag.Duration("timeout", 60*time.Second, "pdf render timeout")
	verbose := pflag.BoolP("verbose", "v", false, "debug logging to stderr")
	pflag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger.InitWithWriter(logger.Config{Level: level, Format: "pretty"}, os.Stderr)

	text, err := readInput(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(2)
	}

	fields, err := usecase.Extract(text, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", domain.Message(err, err.Error()))
		os.Exit(2)
	}

	var data []byte
	switch *format {
	case "labeled":
		data = []byte(usecase.Render(fields).String() + "\n")
	case "json":
		data, err = json.MarshalIndent(fields, "", "  ")
		data = append(data, '\n')
	case "html":
		var html string
		html, err = usecase.ToMarkup(fields)
		data = []byte(html)
	case "pdf":
		if *out == "" {
			fmt.Fprintln(os.Stderr, "--out is required for pdf output")
			os.Exit(2)
		}
		data, err = renderPDF(fields, *chromePath, *timeout)
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *format, err)
		os.Exit(1)
	}

	if err := writeOutput(*out, data); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		os.Exit(1)
	}
}

func readInput(path string) (string, error) {
	if path == "-" || path == "" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func renderPDF(fields model.ExtractedFields, chromePath string, timeout time.Duration) ([]byte, error) {
	html, err := usecase.ToMarkup(fields)
	if err != nil {
		return nil, err
	}
	cfg := config.Default().Renderer
	cfg.ChromePath = chromePath
	r := infra.NewChromedpRenderer(cfg, timeout)
	pdf, err := r.RenderHTMLToPDF(context.Background(), html)
	if err != nil {
		return nil, errors.Join(domain.ErrRendering, err)
	}
	return pdf, nil
}
