package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-editor/internal/audit"
	"github.com/dvloznov/statement-editor/internal/config"
	"github.com/dvloznov/statement-editor/internal/domain"
	"github.com/dvloznov/statement-editor/internal/export"
	"github.com/dvloznov/statement-editor/internal/extract"
	"github.com/dvloznov/statement-editor/internal/gcs"
	"github.com/dvloznov/statement-editor/internal/logger"
	"github.com/dvloznov/statement-editor/internal/process"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "extract":
		runExtract(log)
	case "edit":
		runEdit(log)
	case "upload":
		runUpload(log)
	case "verify-audit":
		runVerifyAudit(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Statement Editor CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  extract       Extract a structured statement from a raw text file")
	fmt.Println("  edit          Extract a statement, apply edits and write CSV plus audit log")
	fmt.Println("  upload        Upload a local file to GCS")
	fmt.Println("  verify-audit  Check the hash chain of an audit log file")
	fmt.Println("  help          Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func extractFromFile(ctx context.Context, log zerolog.Logger, path string) *domain.Statement {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to read statement text")
	}

	svc := extract.NewService(cfg, log)
	st, source := svc.ExtractStatement(ctx, string(data))
	process.Recalculate(st)

	log.Info().Str("source", source).Int("transactions", len(st.Transactions)).Msg("Statement extracted")
	return st
}

func runExtract(log zerolog.Logger) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	file := fs.String("file", "", "Path to raw statement text file")
	format := fs.String("format", "json", "Output format: json or csv")
	out := fs.String("o", "", "Output file (defaults to stdout)")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	st := extractFromFile(ctx, log, *file)

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal().Err(err).Str("file", *out).Msg("Failed to create output file")
		}
		defer f.Close()
		w = f
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(st); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode statement")
		}
	case "csv":
		writer := &export.CSVWriter{IncludeHeader: true}
		if err := writer.Write(w, st); err != nil {
			log.Fatal().Err(err).Msg("Failed to write CSV")
		}
	default:
		log.Fatal().Str("format", *format).Msg("Unsupported output format")
	}
}

func runEdit(log zerolog.Logger) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	file := fs.String("file", "", "Path to raw statement text file")
	editsPath := fs.String("edits", "", "Path to edit request JSON file")
	out := fs.String("o", "statement.csv", "Output CSV file")
	auditPath := fs.String("audit", "", "Audit log output file (defaults to <output>.audit.jsonl)")
	user := fs.String("user", "", "User ID recorded in the audit trail")
	fs.Parse(os.Args[2:])

	if *file == "" || *editsPath == "" {
		log.Fatal().Msg("Usage: cli edit -file PATH -edits PATH [-o OUT] [-audit OUT]")
	}
	if *auditPath == "" {
		*auditPath = *out + ".audit.jsonl"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	editsData, err := os.ReadFile(*editsPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *editsPath).Msg("Failed to read edit request")
	}

	var req domain.EditRequest
	if err := json.Unmarshal(editsData, &req); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse edit request")
	}
	if err := domain.ValidateEditRequest(&req); err != nil {
		log.Fatal().Err(err).Msg("Invalid edit request")
	}

	st := extractFromFile(ctx, log, *file)

	trail := audit.NewTrail()
	process.ApplyEdits(st, &req, trail, *user)

	writer := &export.CSVWriter{IncludeHeader: true}
	if err := writer.WriteToFile(*out, st); err != nil {
		log.Fatal().Err(err).Msg("Failed to write CSV")
	}

	auditFile, err := os.Create(*auditPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *auditPath).Msg("Failed to create audit log")
	}
	defer auditFile.Close()

	if _, err := trail.WriteTo(auditFile); err != nil {
		log.Fatal().Err(err).Msg("Failed to write audit log")
	}

	summary := trail.Summarize()
	fmt.Printf("Wrote %s and %s (%d changes)\n", *out, *auditPath, summary.TotalChanges)
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket name (or set GCS_BUCKET env)")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local file")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read file")
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	client := gcs.NewClient(*bucketName)
	uri, err := client.UploadObject(ctx, *objectName, "application/octet-stream", data)
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, uri)
}

func runVerifyAudit(log zerolog.Logger) {
	fs := flag.NewFlagSet("verify-audit", flag.ExitOnError)
	file := fs.String("file", "", "Path to audit log JSONL file")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to open audit log")
	}
	defer f.Close()

	var entries []audit.Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry audit.Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			log.Fatal().Err(err).Msg("Failed to parse audit entry")
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to read audit log")
	}

	if !audit.VerifyChain(entries) {
		fmt.Printf("FAILED: hash chain broken in %s (%d entries)\n", *file, len(entries))
		os.Exit(1)
	}

	fmt.Printf("OK: %d entries, hash chain intact\n", len(entries))
}
