package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

func (r *Recognizer) baseArgs(path string) []string {
	args := []string{path, "stdout", "-l", r.cfg.Lang}
	if r.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(r.cfg.PSM))
	}
	if r.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(r.cfg.OEM))
	}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}
	return args
}

// tesseract <file> stdout -l <lang>
func (r *Recognizer) tesseractText(ctx context.Context, path string) (string, []string, error) {
	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, r.baseArgs(path)...)
	if err != nil {
		return "", []string{truncate(string(errb), 1<<10)}, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}

// tesseractTSVConfidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (r *Recognizer) tesseractTSVConfidence(ctx context.Context, path string) (float32, []string, error) {
	args := append(r.baseArgs(path), "tsv")
	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, args...)
	if err != nil {
		return 0, []string{truncate(string(errb), 1<<10)}, fmt.Errorf("tesseract TSV: %w", err)
	}
	return meanTSVConfidence(string(out)), nil, nil
}

// meanTSVConfidence averages the conf column (11th of 12) skipping the header and -1 rows.
func meanTSVConfidence(tsv string) float32 {
	var sum, n float64
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || ln == "" {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := strings.TrimSpace(cols[10])
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil && v >= 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float32(sum / n / 100.0)
}
