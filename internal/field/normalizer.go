// Package field cleans raw field-survey rows and fuses them with the
// station mapping.
package field

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/agrisense/survey-cli/internal/config"
	"github.com/agrisense/survey-cli/internal/table"
)

// Column names of the field-survey table.
const (
	ColFieldID = "Field_ID"
	// ColStation is attached by Fuse from the station mapping.
	ColStation = "Weather_station"
)

// indexArtifacts are positional-index columns that leak out of the mapping
// CSV's encoding and carry no meaning.
var indexArtifacts = []string{"Unnamed: 0", ""}

// Normalizer corrects the known defects of raw survey rows: the transposed
// column pair, categorical typos, and sign errors in the elevation column.
type Normalizer struct {
	cfg config.CleanConfig
	log *zap.Logger
}

// NewNormalizer creates a normalizer from the cleaning rules.
func NewNormalizer(cfg config.CleanConfig) *Normalizer {
	return &Normalizer{cfg: cfg, log: zap.L().Named("field")}
}

// Normalize returns a cleaned copy of the raw survey table. The input is
// left untouched. A missing expected column is fatal; an unknown categorical
// value is not.
func (n *Normalizer) Normalize(raw *table.Table) (*table.Table, error) {
	t := raw.Clone()
	if err := n.swapColumns(t); err != nil {
		return nil, err
	}
	if err := n.applyCorrections(t); err != nil {
		return nil, err
	}
	n.log.Info("field data normalized", zap.Int("rows", t.Len()))
	return t, nil
}

// swapColumns exchanges the two mislabeled column names. The swap routes
// through a placeholder name that is lengthened until it collides with
// nothing, so the second rename can never overwrite the first column.
// Only a single pair is supported.
func (n *Normalizer) swapColumns(t *table.Table) error {
	from, to := n.cfg.SwapFrom, n.cfg.SwapTo
	if from == "" || to == "" {
		return eris.New("field: column swap mapping is empty")
	}

	tmp := from + "__swap"
	for t.HasColumn(tmp) {
		tmp += "_"
	}

	if err := t.RenameColumn(from, tmp); err != nil {
		return eris.Wrap(err, "field: swap columns")
	}
	if err := t.RenameColumn(to, from); err != nil {
		return eris.Wrap(err, "field: swap columns")
	}
	if err := t.RenameColumn(tmp, to); err != nil {
		return eris.Wrap(err, "field: swap columns")
	}

	n.log.Info("swapped columns", zap.String("a", from), zap.String("b", to))
	return nil
}

// applyCorrections fixes categorical typos via the lookup table (values not
// in the table pass through) and takes the absolute value of the designated
// numeric column.
func (n *Normalizer) applyCorrections(t *table.Table) error {
	if !t.HasColumn(n.cfg.CropColumn) {
		return eris.Errorf("field: missing column %q", n.cfg.CropColumn)
	}
	if !t.HasColumn(n.cfg.AbsColumn) {
		return eris.Errorf("field: missing column %q", n.cfg.AbsColumn)
	}

	for _, row := range t.Rows {
		if f, ok := table.Float(row[n.cfg.AbsColumn]); ok {
			row[n.cfg.AbsColumn] = math.Abs(f)
		}
		if s, ok := row[n.cfg.CropColumn].(string); ok {
			if fixed, known := n.cfg.Corrections[s]; known {
				row[n.cfg.CropColumn] = fixed
			}
		}
	}
	return nil
}

// Fuse left-joins cleaned field rows onto the station mapping by field id.
// Every field row survives; a field with no mapping entry gets a nil
// station. Index artifact columns inherited from the mapping CSV are
// dropped from the result.
func Fuse(cleaned, mapping *table.Table) (*table.Table, error) {
	fused, err := table.LeftJoin(cleaned, mapping, ColFieldID)
	if err != nil {
		return nil, eris.Wrap(err, "field: fuse with station mapping")
	}
	for _, artifact := range indexArtifacts {
		fused.DropColumn(artifact)
	}
	zap.L().Named("field").Info("fused with station mapping", zap.Int("rows", fused.Len()))
	return fused, nil
}
