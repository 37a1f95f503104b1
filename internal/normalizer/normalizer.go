package normalizer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/config"
	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/rs/zerolog"
)

// Result is a normalized supplier list and where it was written.
type Result struct {
	Supplier   string
	InputPath  string
	OutputPath string
	Records    []models.PriceRecord
}

// Normalizer turns raw supplier downloads into the common price list schema.
type Normalizer struct {
	config      config.NormalizerConfig
	profiles    map[string]Profile
	fileManager *common.FileManager
	now         func() time.Time
	logger      zerolog.Logger
}

// NewNormalizer creates a normalizer with the default supplier profiles.
func NewNormalizer(cfg config.NormalizerConfig, logger zerolog.Logger) *Normalizer {
	if cfg.MaxDescriptionLength <= 0 {
		cfg.MaxDescriptionLength = config.DefaultNormalizerMaxDescription
	}
	return &Normalizer{
		config:      cfg,
		profiles:    DefaultProfiles(),
		fileManager: common.NewFileManager(logger),
		now:         time.Now,
		logger:      logger.With().Str("component", "Normalizer").Logger(),
	}
}

// WithClock replaces the time source used to date exported files.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// Profile returns the profile for supplier.
func (n *Normalizer) Profile(supplier string) (Profile, bool) {
	p, ok := n.profiles[supplier]
	return p, ok
}

// Suppliers lists the known suppliers in a stable order.
func (n *Normalizer) Suppliers() []string {
	names := make([]string, 0, len(n.profiles))
	for name := range n.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InputPath is where the raw list of supplier is expected inside dir.
func (n *Normalizer) InputPath(dir, supplier string) (string, error) {
	p, ok := n.profiles[supplier]
	if !ok {
		return "", common.NewValidationError("supplier", supplier, "no normalization profile")
	}
	path := filepath.Join(dir, p.InputName())
	if !n.fileManager.FileExists(path) {
		for _, alt := range []Format{FormatXLSX, FormatCSV} {
			if other := filepath.Join(dir, p.Supplier+"."+string(alt)); alt != p.Format && n.fileManager.FileExists(other) {
				return other, nil
			}
		}
	}
	return path, nil
}

// Read normalizes the raw list at path without writing anything.
func (n *Normalizer) Read(supplier, path string) ([]models.PriceRecord, error) {
	p, ok := n.profiles[supplier]
	if !ok {
		return nil, common.NewValidationError("supplier", supplier, "no normalization profile")
	}
	if !n.fileManager.FileExists(path) {
		return nil, common.WrapErrorf(common.ErrNotFound, "raw price list %s", path)
	}

	switch formatOf(path, p.Format) {
	case FormatCSV:
		t, latin1, err := readCSV(path, p.Delimiter, p.SkipRows)
		if err != nil {
			return nil, err
		}
		if latin1 {
			n.logger.Warn().Str("file", path).Msg("CSV is not valid UTF-8, decoded as Latin-1")
		}
		return normalizeTable(t, p, n.config.MaxDescriptionLength)
	default:
		tables, err := readXLSX(path, p.SkipRows, p.AllSheets)
		if err != nil {
			return nil, err
		}
		return normalizeTables(tables, p, n.config.MaxDescriptionLength)
	}
}

// Process normalizes the raw list at path and exports it as <supplier>_<YYYYMMDD>.xlsx.
func (n *Normalizer) Process(supplier, path string) (*Result, error) {
	records, err := n.Read(supplier, path)
	if err != nil {
		return nil, common.WrapErrorf(err, "failed to normalize %s", supplier)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no valid rows found in %s", path)
	}

	if err := n.fileManager.EnsureDirectory(n.config.OutputDir, os.ModePerm); err != nil {
		return nil, err
	}
	out := filepath.Join(n.config.OutputDir, ExportFileName(supplier, n.now()))
	if err := exportXLSX(out, records); err != nil {
		return nil, common.WrapErrorf(err, "failed to export %s", supplier)
	}

	n.logger.Info().
		Str("supplier", supplier).
		Int("records", len(records)).
		Str("output", out).
		Msg("Price list normalized")

	return &Result{Supplier: supplier, InputPath: path, OutputPath: out, Records: records}, nil
}
