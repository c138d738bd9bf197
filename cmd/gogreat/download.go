package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Reference data sources.
const (
	gencodeBaseURL = "https://ftp.ebi.ac.uk/pub/databases/gencode/Gencode_human/release_46"
	gencodeVersion = "v46"
	ucscBaseURL    = "https://hgdownload.soe.ucsc.edu/goldenPath"
	goBaseURL      = "https://current.geneontology.org"
)

// datasetURLs returns the files of a named dataset for an assembly.
func datasetURLs(dataset, assembly string) ([]string, error) {
	asm := strings.ToLower(assembly)
	ucscName := map[string]string{"grch38": "hg38", "grch37": "hg19"}[asm]
	if ucscName == "" {
		ucscName = asm
	}

	switch dataset {
	case "gencode":
		switch asm {
		case "grch37", "hg19":
			return []string{fmt.Sprintf("%s/GRCh37_mapping/gencode.%slift37.basic.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)}, nil
		case "grch38", "hg38":
			return []string{fmt.Sprintf("%s/gencode.%s.basic.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)}, nil
		}
		return nil, fmt.Errorf("GENCODE is only available for GRCh37 and GRCh38, not %q", assembly)
	case "chromsizes":
		return []string{fmt.Sprintf("%s/%s/bigZips/%s.chrom.sizes", ucscBaseURL, ucscName, ucscName)}, nil
	case "go":
		return []string{
			goBaseURL + "/annotations/goa_human.gaf.gz",
			goBaseURL + "/ontology/go-basic.obo",
		}, nil
	}
	return nil, fmt.Errorf("unknown dataset %q (expected one of %s)", dataset, strings.Join(datasets(), ", "))
}

func datasets() []string {
	return []string{"chromsizes", "gencode", "go"}
}

func newDownloadCmd() *cobra.Command {
	var (
		assembly  string
		outputDir string
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "download [options] [dataset...]",
		Short: "Download reference annotations (GENCODE, chromosome sizes, GO)",
		Long: `Download reference files for an analysis into ~/.gogreat/<assembly>/.
Datasets: chromsizes, gencode, go (default: all). Existing files are kept.`,
		Example: `  gogreat download
  gogreat download --assembly GRCh37 gencode chromsizes
  gogreat download --output /data/great go`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = datasets()
			}
			if outputDir == "" {
				outputDir = defaultDataDir()
				if outputDir == "" {
					return fmt.Errorf("cannot determine home directory, use --output")
				}
			}
			destDir := filepath.Join(outputDir, strings.ToLower(assembly))
			if err := os.MkdirAll(destDir, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", destDir, err)
			}

			client := &http.Client{Timeout: timeout}
			for _, ds := range args {
				urls, err := datasetURLs(ds, assembly)
				if err != nil {
					return &usageError{msg: err.Error()}
				}
				for _, u := range urls {
					dest := filepath.Join(destDir, filepath.Base(u))
					if err := downloadFile(cmd.Context(), client, u, dest, cmd.ErrOrStderr()); err != nil {
						return fmt.Errorf("download %s: %w", ds, err)
					}
				}
			}
			logger.Info("download complete", zap.String("dir", destDir))
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&assembly, "assembly", "GRCh38", "Genome assembly (GRCh38, GRCh37 or a UCSC name such as mm10)")
	fl.StringVarP(&outputDir, "output", "o", "", "Output directory (default: ~/.gogreat/)")
	fl.DurationVar(&timeout, "timeout", 30*time.Minute, "Per-file download timeout")
	return cmd
}

// downloadFile downloads url to destPath, reporting progress on progress.
// Existing files are skipped; partial downloads never replace destPath.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string, progress io.Writer) error {
	if info, err := os.Stat(destPath); err == nil {
		logger.Info("already downloaded, skipping",
			zap.String("file", filepath.Base(destPath)),
			zap.String("size", formatSize(info.Size())))
		return nil
	}

	logger.Info("downloading", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	pw := &progressWriter{
		out:       progress,
		total:     resp.ContentLength,
		lastPrint: time.Now(),
	}
	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	pw.finish()
	logger.Info("downloaded",
		zap.String("file", filepath.Base(destPath)),
		zap.String("size", formatSize(pw.downloaded)))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	out        io.Writer
	total      int64
	downloaded int64
	lastPrint  time.Time
	printed    bool
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.downloaded += int64(n)

	// Print progress every second
	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(pw.downloaded) / float64(pw.total) * 100
			fmt.Fprintf(pw.out, "\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Fprintf(pw.out, "\r    Progress: %s  ", formatSize(pw.downloaded))
		}
		pw.lastPrint = time.Now()
		pw.printed = true
	}

	return n, nil
}

// finish ends the progress line, if one was started.
func (pw *progressWriter) finish() {
	if pw.printed {
		fmt.Fprintln(pw.out)
	}
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
