package extractor

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/stmtsense/extractor/common"
	"github.com/aqlanhadi/stmtsense/extractor/detect"
	"github.com/aqlanhadi/stmtsense/extractor/generic"
	"github.com/aqlanhadi/stmtsense/extractor/mpesa"
	"github.com/aqlanhadi/stmtsense/extractor/normalize"
	"github.com/aqlanhadi/stmtsense/extractor/source"
	"github.com/aqlanhadi/stmtsense/extractor/tabular"
	log "github.com/sirupsen/logrus"
)

// sampleRecords bounds how many tabular records feed format detection.
const sampleRecords = 50

// textExtractor is implemented by the per-profile PDF extractors.
type textExtractor interface {
	Extract(text string) []common.Candidate
}

// Extractor runs the statement pipeline. It holds no per-call state and is
// safe for concurrent use.
type Extractor struct {
	cfg        Config
	detector   *detect.Detector
	tabular    *tabular.Extractor
	text       map[common.ProfileID]textExtractor
	normalizer *normalize.Normalizer
}

func New(cfg Config) *Extractor {
	e := &Extractor{
		cfg:        cfg,
		detector:   detect.New(cfg.Profiles),
		tabular:    tabular.New(cfg.Columns),
		text:       make(map[common.ProfileID]textExtractor, len(cfg.Profiles)),
		normalizer: normalize.New(cfg.Profiles, cfg.DefaultCurrency),
	}

	for _, p := range cfg.Profiles {
		if p.MobileMoney() {
			e.text[p.ID] = mpesa.New(p)
		} else {
			e.text[p.ID] = generic.New(p)
		}
	}
	return e
}

// Process reads one document and returns its transactions in source order. A
// statement with no transactions is not an error; check Found.
func (e *Extractor) Process(ctx context.Context, doc common.Document) (common.Statement, error) {
	kind, err := source.KindOf(doc.ContentType, doc.Filename, doc.Data)
	if err != nil {
		return common.Statement{}, err
	}
	if err := ctx.Err(); err != nil {
		return common.Statement{}, err
	}

	var (
		profile    common.ProfileID
		candidates []common.Candidate
	)

	switch kind {
	case source.KindPDF:
		text, err := source.ReadPDFText(doc.Data)
		if err != nil {
			return common.Statement{}, err
		}
		profile = e.profileFor(doc, text)
		candidates = e.extractText(profile, text)

	case source.KindCSV, source.KindXLSX:
		read := source.ReadCSV
		if kind == source.KindXLSX {
			read = source.ReadXLSX
		}
		records, err := read(doc.Data)
		if err != nil {
			return common.Statement{}, err
		}
		profile = e.profileFor(doc, sample(records))
		candidates = e.tabular.Extract(records)
	}

	statement := common.Statement{
		Source:       SourceName(doc.Filename),
		Profile:      profile,
		Currency:     e.currencyFor(profile),
		Transactions: e.normalizer.All(candidates, profile),
	}
	if statement.Found() {
		statement.Currency = statement.Transactions[0].Currency
	}
	statement.Tally()

	log.WithFields(log.Fields{
		"source":       statement.Source,
		"profile":      profile,
		"transactions": len(statement.Transactions),
	}).Info("extracted statement")

	return statement, nil
}

// ProcessFile reads a statement from disk; the content type comes from the
// file extension or the bytes.
func (e *Extractor) ProcessFile(ctx context.Context, path string, profile common.ProfileID) (common.Statement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return common.Statement{}, err
	}
	return e.Process(ctx, common.Document{Data: data, Filename: path, Profile: profile})
}

// Text returns the linearized text of a document without extracting anything.
func (e *Extractor) Text(doc common.Document) (string, error) {
	kind, err := source.KindOf(doc.ContentType, doc.Filename, doc.Data)
	if err != nil {
		return "", err
	}
	if kind == source.KindPDF {
		return source.ReadPDFText(doc.Data)
	}
	if kind == source.KindXLSX {
		records, err := source.ReadXLSX(doc.Data)
		if err != nil {
			return "", err
		}
		return sample(records), nil
	}
	return string(doc.Data), nil
}

// Detect exposes format detection for callers that only need the profile.
func (e *Extractor) Detect(filename, sampleText string) common.ProfileID {
	return e.detector.Detect(filename, sampleText)
}

func (e *Extractor) profileFor(doc common.Document, text string) common.ProfileID {
	if doc.Profile != "" {
		if _, ok := e.text[doc.Profile]; ok {
			return doc.Profile
		}
		log.WithField("profile", doc.Profile).Warn("unknown profile override, detecting instead")
	}
	return e.detector.Detect(filepath.Base(doc.Filename), text)
}

func (e *Extractor) extractText(profile common.ProfileID, text string) []common.Candidate {
	ex, ok := e.text[profile]
	if !ok {
		ex = e.text[common.ProfileGeneric]
	}
	return ex.Extract(text)
}

func (e *Extractor) currencyFor(profile common.ProfileID) string {
	for _, p := range e.cfg.Profiles {
		if p.ID == profile && p.Currency != "" {
			return p.Currency
		}
	}
	return e.cfg.DefaultCurrency
}

// SourceName is the filename without directory or extension.
func SourceName(filename string) string {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// sample flattens the first records into text for format detection.
func sample(records []source.Record) string {
	var b strings.Builder
	for i, record := range records {
		if i == sampleRecords {
			break
		}
		for k, v := range record {
			b.WriteString(k)
			b.WriteByte(' ')
			b.WriteString(v)
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// CreateFinalOutput shapes a statement for printing: the bare transaction list,
// the statement without transactions, or everything.
func CreateFinalOutput(statement common.Statement, transactionOnly bool, statementOnly bool) interface{} {
	if transactionOnly {
		return statement.Transactions
	}

	output := map[string]interface{}{
		"source":       statement.Source,
		"profile":      statement.Profile,
		"currency":     statement.Currency,
		"total_credit": statement.TotalCredit,
		"total_debit":  statement.TotalDebit,
		"nett":         statement.Nett,
	}
	if !statementOnly {
		output["transactions"] = statement.Transactions
	}
	return output
}
