package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/FACorreiaa/statement-normalizer/internal/domain/export"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/service"
	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/tabular"
)

var errUsage = errors.New("usage error")

var kindAliases = map[string]tabular.Kind{
	"":                              tabular.KindUnknown,
	"csv":                           tabular.KindDelimited,
	"tsv":                           tabular.KindDelimited,
	"xlsx":                          tabular.KindSpreadsheet,
	"xls":                           tabular.KindSpreadsheet,
	"pdf":                           tabular.KindPDF,
	string(tabular.KindDelimited):   tabular.KindDelimited,
	string(tabular.KindSpreadsheet): tabular.KindSpreadsheet,
}

type parseOutput struct {
	*service.ParseResult
	Summary service.Summary `json:"summary"`
	FileID  *uuid.UUID      `json:"user_file_id,omitempty"`
}

func runParse(ctx context.Context, deps *Dependencies, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	formatID := fs.Int("format", 0, "statement format id")
	kindFlag := fs.String("kind", "", "declared document kind: csv, xlsx, xls or pdf")
	xlsxOut := fs.String("xlsx", "", "also write the transactions to this workbook")
	store := fs.Bool("store", false, "persist the result to the database")
	userFlag := fs.String("user", "", "owner of the stored file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 || *formatID == 0 {
		return fmt.Errorf("%w: parse needs -format and exactly one FILE", errUsage)
	}
	kind, ok := kindAliases[strings.ToLower(*kindFlag)]
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", errUsage, *kindFlag)
	}

	var userID uuid.UUID
	if *store {
		if deps.StatementRepo == nil {
			return fmt.Errorf("%w: -store needs DATABASE_URL", errUsage)
		}
		id, err := uuid.Parse(*userFlag)
		if err != nil {
			return fmt.Errorf("%w: -store needs a valid -user: %v", errUsage, err)
		}
		userID = id
	}

	path := fs.Arg(0)
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	res, err := deps.Parser.ParseDocument(ctx, service.Document{
		FormatID: *formatID,
		Kind:     kind,
		Content:  content,
	})
	if err != nil {
		return err
	}
	out := parseOutput{ParseResult: res, Summary: service.Summarize(res.Transactions)}

	if *xlsxOut != "" {
		if err := writeWorkbook(deps, *xlsxOut, res.Transactions); err != nil {
			return err
		}
	}

	if *store {
		if err := deps.StatementRepo.UpsertFormats(ctx, deps.Registry.List()); err != nil {
			return err
		}
		file, n, err := deps.StatementRepo.SaveResult(ctx, userID, filepath.Base(path), res)
		if err != nil {
			return err
		}
		out.FileID = &file.ID
		deps.Logger.InfoContext(ctx, "statement stored",
			slog.String("user_file_id", file.ID.String()),
			slog.Int("transactions", n),
		)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeWorkbook(deps *Dependencies, name string, txs []service.NormalizedTransaction) error {
	if !filepath.IsAbs(name) {
		name = filepath.Join(deps.Config.Export.Dir, name)
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := export.WriteWorkbook(f, txs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	deps.Logger.Info("workbook written", slog.String("path", name), slog.Int("rows", len(txs)))
	return nil
}

func runFormats(deps *Dependencies, stdout io.Writer) error {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTRATEGY\tSIGN RULE")
	for _, f := range deps.Registry.List() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", f.ID, f.Name, f.Strategy, f.SignRule)
	}
	return tw.Flush()
}

func runReceipt(deps *Dependencies, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: receipt needs exactly one FIELDS.json", errUsage)
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var bag map[string]string
	if err := json.Unmarshal(raw, &bag); err != nil {
		return fmt.Errorf("decode field bag: %w", err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(deps.Receipts.Extract(bag))
}
