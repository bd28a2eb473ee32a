package service

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/amterp/cardman/internal/form"
	"github.com/amterp/cardman/internal/kv"
	"github.com/amterp/cardman/internal/model"
	"github.com/amterp/cardman/internal/store"
	"github.com/amterp/cardman/internal/version"
)

// IssueSeverity indicates how critical an issue is.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue codes for diagnostic results.
const (
	// Stored cards (errors)
	CodeUnreadableBlob = "UNREADABLE_BLOB"
	CodeCorruptBlob    = "CORRUPT_BLOB"

	// Stored cards (warnings)
	CodeMissingBlob     = "MISSING_BLOB"
	CodeInvalidCard     = "INVALID_CARD"
	CodeQuotaNearlyFull = "QUOTA_NEARLY_FULL"

	// Config (warnings)
	CodeMalformedConfig      = "MALFORMED_CONFIG"
	CodeConfigSchemaOutdated = "CONFIG_SCHEMA_OUTDATED"
)

// quotaWarnRatio is the share of the quota the blob may use before doctor
// warns about it.
const quotaWarnRatio = 0.9

// Issue represents a single diagnostic finding.
type Issue struct {
	Severity  IssueSeverity `json:"severity"`
	Code      string        `json:"code"`
	CardID    int           `json:"card_id,omitempty"`
	Message   string        `json:"message"`
	Fixable   bool          `json:"fixable"`
	FixAction string        `json:"fix_action,omitempty"`
	FixError  string        `json:"fix_error,omitempty"` // Populated if fix was attempted but failed
}

// StorageDiagnostic describes the stored blob.
type StorageDiagnostic struct {
	Key   string `json:"key"`
	Found bool   `json:"found"`
	Cards int    `json:"cards"`
	Bytes int    `json:"bytes"`
	Quota int64  `json:"quota"`
}

// ReportSummary summarizes the diagnostic results.
type ReportSummary struct {
	Errors    int `json:"errors"`
	Warnings  int `json:"warnings"`
	Fixed     int `json:"fixed"`
	FixFailed int `json:"fix_failed,omitempty"`
}

// DiagnosticReport contains all diagnostic results.
type DiagnosticReport struct {
	Storage StorageDiagnostic `json:"storage"`
	Issues  []Issue           `json:"issues"`
	Summary ReportSummary     `json:"summary"`
}

// HasErrors returns true if there are any error-level issues.
func (r *DiagnosticReport) HasErrors() bool {
	return r.Summary.Errors > 0
}

func (r *DiagnosticReport) summarize() {
	r.Summary.Errors = 0
	r.Summary.Warnings = 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			r.Summary.Errors++
		} else {
			r.Summary.Warnings++
		}
	}
}

// DoctorService inspects stored cards and config without going through
// CardService, which would silently reseed a bad blob.
type DoctorService struct {
	storage    kv.Storage
	key        string
	configPath string
	quota      int64
}

// NewDoctorService creates a diagnostic service over storage.
func NewDoctorService(storage kv.Storage, key, configPath string, quota int64) *DoctorService {
	return &DoctorService{
		storage:    storage,
		key:        key,
		configPath: configPath,
		quota:      quota,
	}
}

// BackupKey is where Fix keeps a corrupt blob before reseeding.
func (s *DoctorService) BackupKey() string {
	return s.key + ".corrupt"
}

// Diagnose checks the config file and the stored card blob.
func (s *DoctorService) Diagnose() (*DiagnosticReport, error) {
	report := &DiagnosticReport{
		Storage: StorageDiagnostic{Key: s.key, Quota: s.quota},
		Issues:  []Issue{},
	}

	s.checkConfig(report)
	s.checkBlob(report)

	report.summarize()
	return report, nil
}

// Fix applies automatic fixes for issues that have deterministic solutions.
// Returns a new report showing remaining issues and what was fixed.
func (s *DoctorService) Fix(report *DiagnosticReport) (*DiagnosticReport, error) {
	fixed := 0
	fixFailed := 0
	remaining := []Issue{}

	for _, issue := range report.Issues {
		if !issue.Fixable {
			remaining = append(remaining, issue)
			continue
		}

		var err error
		switch issue.Code {
		case CodeMissingBlob:
			err = s.seedDefaults()
		case CodeCorruptBlob:
			err = s.fixCorruptBlob()
		default:
			remaining = append(remaining, issue)
			continue
		}

		if err != nil {
			issue.FixError = err.Error()
			remaining = append(remaining, issue)
			fixFailed++
		} else {
			fixed++
		}
	}

	newReport := &DiagnosticReport{
		Storage: report.Storage,
		Issues:  remaining,
		Summary: ReportSummary{
			Fixed:     fixed,
			FixFailed: fixFailed,
		},
	}
	newReport.summarize()
	return newReport, nil
}

func (s *DoctorService) checkConfig(report *DiagnosticReport) {
	if s.configPath == "" {
		return
	}

	data, err := os.ReadFile(s.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return // No config file is fine
		}
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityWarning,
			Code:     CodeMalformedConfig,
			Message:  fmt.Sprintf("Cannot read config: %v", err),
		})
		return
	}

	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityWarning,
			Code:     CodeMalformedConfig,
			Message:  fmt.Sprintf("Invalid TOML in config: %v", err),
		})
		return
	}

	current := version.CurrentConfigSchema()
	schema, ok := raw["cardman_schema"].(string)
	switch {
	case !ok:
		report.Issues = append(report.Issues, Issue{
			Severity:  SeverityWarning,
			Code:      CodeConfigSchemaOutdated,
			Message:   fmt.Sprintf("Config missing schema version, current is %s", current),
			FixAction: fmt.Sprintf("Add cardman_schema = %q to %s", current, s.configPath),
		})
	case schema != current:
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityWarning,
			Code:     CodeConfigSchemaOutdated,
			Message:  version.InvalidConfigSchema(s.configPath, schema).Error(),
		})
	}
}

func (s *DoctorService) checkBlob(report *DiagnosticReport) {
	raw, found, err := s.storage.GetItem(s.key)
	if err != nil {
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityError,
			Code:     CodeUnreadableBlob,
			Message:  fmt.Sprintf("Cannot read stored cards: %v", err),
		})
		return
	}
	if !found {
		report.Issues = append(report.Issues, Issue{
			Severity:  SeverityWarning,
			Code:      CodeMissingBlob,
			Message:   fmt.Sprintf("No cards stored under %q", s.key),
			Fixable:   true,
			FixAction: "Seed the default cards",
		})
		return
	}

	report.Storage.Found = true
	report.Storage.Bytes = len(raw)

	if s.quota > 0 && float64(len(s.key)+len(raw)) > quotaWarnRatio*float64(s.quota) {
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityWarning,
			Code:     CodeQuotaNearlyFull,
			Message: fmt.Sprintf("Stored cards use %d of %d quota bytes; further writes may be rejected",
				len(s.key)+len(raw), s.quota),
		})
	}

	cards, err := store.Decode(s.key, []byte(raw))
	if err != nil {
		report.Issues = append(report.Issues, Issue{
			Severity:  SeverityError,
			Code:      CodeCorruptBlob,
			Message:   err.Error(),
			Fixable:   true,
			FixAction: fmt.Sprintf("Back up to %q and seed the default cards", s.BackupKey()),
		})
		return
	}

	report.Storage.Cards = len(cards)
	for _, card := range cards {
		errs := form.Validate(card.Title, card.Description)
		if errs == nil {
			continue
		}
		report.Issues = append(report.Issues, Issue{
			Severity:  SeverityWarning,
			Code:      CodeInvalidCard,
			CardID:    card.ID,
			Message:   fmt.Sprintf("Card %d: %s", card.ID, errs.Error()),
			FixAction: fmt.Sprintf("Run 'cardman edit %d'", card.ID),
		})
	}
}

func (s *DoctorService) seedDefaults() error {
	return store.NewCardStore(s.storage, s.key).Save(model.DefaultCards())
}

func (s *DoctorService) fixCorruptBlob() error {
	raw, found, err := s.storage.GetItem(s.key)
	if err != nil {
		return err
	}
	if found {
		if err := s.storage.SetItem(s.BackupKey(), raw); err != nil {
			return fmt.Errorf("failed to back up corrupt cards: %w", err)
		}
	}
	return s.seedDefaults()
}
