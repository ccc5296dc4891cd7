package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/fishbone/pkg/errors"
	"github.com/matzehuels/fishbone/pkg/pipeline"
)

// nopCloser makes os.Stdout an io.WriteCloser.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for path, or stdout when path is "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if err := errors.ValidateOutputPath(path); err != nil {
		return nil, err
	}
	return os.Create(path)
}

// basePath derives the output path stem. Without an explicit output the
// input's extension (and a trailing ".layout") is stripped; a known format
// extension on output is stripped too.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath names the file for one format. A single format honours the
// output flag as given.
func outputPath(output, input, format string, single bool) string {
	if single && output != "" {
		return output
	}
	return basePath(output, input) + "." + format
}

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
}

// writeArtifacts writes each rendered format and returns the paths written
// in format order.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	single := len(p.formats) == 1
	if !single && p.output == "-" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "cannot write %d formats to stdout", len(p.formats))
	}

	formats := slices.Clone(p.formats)
	var paths []string
	for _, format := range formats {
		data, ok := p.artifacts[format]
		if !ok {
			return paths, fmt.Errorf("no %s output produced", format)
		}
		path := outputPath(p.output, p.input, format, single)
		if err := writeFile(path, data); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

// printArtifacts reports written files, skipping stdout.
func printArtifacts(paths []string) {
	for _, p := range paths {
		if p != "-" {
			printFile(p)
		}
	}
}
