// Package cleaning turns the raw scraped artifact into the fixed-schema
// cleaned dataset. Stages run in strict order: schema normalization, column
// pruning, range validation with deterministic magnitude correction,
// attribute merging, deduplication, report emission. The engine never
// mutates its input table; running it twice on the same artifact yields
// byte-identical output.
package cleaning

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"robovac/internal/dataset"
	"robovac/internal/model"
)

// ErrStructural marks a raw artifact that cannot be cleaned at all, e.g.
// required columns are missing entirely. This is fatal to the run.
var ErrStructural = errors.New("raw dataset is structurally invalid")

type Config struct {
	// DropThreshold is the missing-value fraction beyond which a column is
	// dropped instead of kept sparse.
	DropThreshold float64
	// Ranges holds the plausible window per range-checked numeric column.
	Ranges map[string]Range
}

func DefaultConfig() Config {
	return Config{DropThreshold: 0.8, Ranges: DefaultRanges()}
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.Ranges == nil {
		cfg.Ranges = DefaultRanges()
	}
	if cfg.DropThreshold <= 0 {
		cfg.DropThreshold = 0.8
	}
	return &Engine{cfg: cfg}
}

// Result is the cleaned dataset plus its audit trail. Columns is the
// cleaned schema in canonical order, minus pruned columns.
type Result struct {
	Products []model.CleanedProduct
	Columns  []string
	Report   *Report
}

// workRecord carries per-row state between stages. The raw colour variants
// and the secondary battery-life source stay separate until the merge stage.
type workRecord struct {
	model.CleanedProduct
	colorBasic     string
	colorExact     string
	batteryLifeAlt *float64
	ecosystemsAlt  []string
}

func (e *Engine) Clean(t *dataset.Table) (*Result, error) {
	for _, req := range []string{"product_name", "price_raw"} {
		if t.ColumnIndex(req) < 0 {
			return nil, fmt.Errorf("%w: missing column %q", ErrStructural, req)
		}
	}

	rep := &Report{RowsIn: len(t.Rows)}

	work := e.normalize(t, rep)
	dropped := e.pruneColumns(work, rep)
	work = e.validateRanges(work, rep)
	mergeAttributes(work)
	work = dedupe(work, rep)
	rep.RowsOut = len(work)

	res := &Result{Report: rep}
	for _, col := range cleanedColumns {
		if !dropped[col.name] {
			res.Columns = append(res.Columns, col.name)
		}
	}
	for _, w := range work {
		res.Products = append(res.Products, w.CleanedProduct)
	}
	return res, nil
}

// normalize is stage 1: canonical column names, unit stripping, list
// splitting. Rows flagged failed and rows without a product name do not
// enter the working set.
func (e *Engine) normalize(t *dataset.Table, rep *Report) []*workRecord {
	fixed := make(map[string]bool, len(dataset.FixedColumns))
	for _, c := range dataset.FixedColumns {
		fixed[c] = true
	}

	var work []*workRecord
	unknown := make(map[string]bool)

	for i := range t.Rows {
		if t.Cell(i, "fetch_status") == string(model.FetchFailed) {
			rep.FailedRowsDropped++
			continue
		}
		w := &workRecord{}
		w.Name = strings.TrimSpace(t.Cell(i, "product_name"))
		if w.Name == "" {
			rep.UnnamedRowsDropped++
			continue
		}

		if raw := t.Cell(i, "price_raw"); raw != "" {
			if v, ok := parsePrice(raw); ok {
				w.Price = &v
			} else {
				rep.AddRejection(ColPrice, w.Name, raw, "unparseable")
			}
		}
		if v, ok := parseFloat(t.Cell(i, "rating")); ok {
			w.Rating = &v
		}
		if n, err := strconv.Atoi(t.Cell(i, "rating_count")); err == nil {
			w.RatingCount = &n
		}

		for _, col := range t.Columns {
			if fixed[col] {
				continue
			}
			val := strings.TrimSpace(t.Cell(i, col))
			if val == "" {
				continue
			}
			if !w.applyAttribute(col, val) {
				unknown[col] = true
			}
		}
		work = append(work, w)
	}

	for col := range unknown {
		rep.UnknownColumns = append(rep.UnknownColumns, col)
	}
	sort.Strings(rep.UnknownColumns)
	return work
}

// applyAttribute routes one page-literal spec-table label to its canonical
// field. Returns false for labels outside the known set; those columns are
// dropped and reported, never carried through as free-form schema.
func (w *workRecord) applyAttribute(label, value string) bool {
	switch canonLabel(label) {
	case "key specifications robot type":
		w.RobotType = value
	case "key specifications robot vacuum cleaner height i",
		"key specifications robot vacuum cleaner height":
		w.HeightCM = num(value)
	case "key specifications battery life":
		w.BatteryLifeMin = mins(value)
	case "key specifications max. noise level":
		w.NoiseLevelDB = num(value)
	case "key specifications robot vacuum cleaner features":
		w.Features = splitTags(value)
	case "key specifications smart home ecosystem":
		w.Ecosystems = splitTags(value)
	case "general information manufacturer":
		w.Manufacturer = value
	case "general information country of origin":
		w.CountryOfOrigin = value
	case "robot vacuum cleaner properties max. suction power i",
		"robot vacuum cleaner properties max. suction power":
		w.SuctionPowerPa = num(value)
	case "robot vacuum cleaner properties filter + dust bag volume":
		w.DustCapacityL = num(value)
	case "robot vacuum cleaner properties water tank capacity":
		w.WaterCapacityL = num(value)
	case "robot vacuum cleaner properties suitable surfaces":
		w.Surfaces = splitTags(value)
	case "robot vacuum cleaner properties max. height door sill":
		w.MaxThresholdMM = num(value)
	case "robot vacuum cleaner properties room area i",
		"robot vacuum cleaner properties room area":
		w.RoomAreaM2 = num(value)
	case "battery properties battery life":
		w.batteryLifeAlt = mins(value)
	case "battery properties charging time":
		w.ChargingTimeMin = mins(value)
	case "battery properties battery type":
		w.BatteryType = value
	case "battery properties capacity":
		w.BatteryCapacityMAh = num(value)
	case "colour colour":
		w.colorBasic = value
	case "colour exact colour description":
		w.colorExact = value
	case "smart home features smart home":
		w.ecosystemsAlt = splitTags(value)
	case "product dimensions weight":
		w.WeightKG = num(value)
	case "model model name":
		// redundant with the product name, not carried over
	default:
		return false
	}
	return true
}

func num(s string) *float64 {
	if v, ok := firstNumber(s); ok {
		return &v
	}
	return nil
}

func mins(s string) *float64 {
	if v, ok := parseMinutes(s); ok {
		return &v
	}
	return nil
}

// pruneColumns is stage 2: any non-required column missing in more than the
// threshold fraction of rows is dropped entirely rather than imputed.
func (e *Engine) pruneColumns(work []*workRecord, rep *Report) map[string]bool {
	dropped := make(map[string]bool)
	n := len(work)
	if n == 0 {
		return dropped
	}
	for _, col := range cleanedColumns {
		if col.required {
			continue
		}
		missing := 0
		for _, w := range work {
			if !col.present(w) {
				missing++
			}
		}
		if float64(missing)/float64(n) > e.cfg.DropThreshold {
			dropped[col.name] = true
			for _, w := range work {
				col.clear(w)
			}
			rep.DroppedColumns = append(rep.DroppedColumns, droppedColumn{
				Name: col.name, Missing: missing, Rows: n,
			})
		}
	}
	return dropped
}

// rangeFields lists the numeric fields subject to range validation, in the
// order their corrections appear in the report. Battery life has two raw
// sources; both are checked before the merge stage picks one.
var rangeFields = []struct {
	name string
	get  func(w *workRecord) []**float64
}{
	{ColPrice, func(w *workRecord) []**float64 { return []**float64{&w.Price} }},
	{ColBatteryCapacity, func(w *workRecord) []**float64 { return []**float64{&w.BatteryCapacityMAh} }},
	{ColBatteryLife, func(w *workRecord) []**float64 { return []**float64{&w.BatteryLifeMin, &w.batteryLifeAlt} }},
	{ColChargingTime, func(w *workRecord) []**float64 { return []**float64{&w.ChargingTimeMin} }},
	{ColSuctionPower, func(w *workRecord) []**float64 { return []**float64{&w.SuctionPowerPa} }},
	{ColRoomArea, func(w *workRecord) []**float64 { return []**float64{&w.RoomAreaM2} }},
	{ColNoiseLevel, func(w *workRecord) []**float64 { return []**float64{&w.NoiseLevelDB} }},
}

// validateRanges is stage 3: every present value of a range-checked field
// either lies in range, is decimal-shifted into range, or is nulled. A row
// whose price does not survive is dropped; other fields only lose the value.
func (e *Engine) validateRanges(work []*workRecord, rep *Report) []*workRecord {
	for _, w := range work {
		for _, rf := range rangeFields {
			rng, ok := e.cfg.Ranges[rf.name]
			if !ok {
				continue
			}
			for _, p := range rf.get(w) {
				if *p == nil {
					continue
				}
				orig := **p
				fitted, ok := FitToRange(orig, rng)
				switch {
				case !ok:
					rep.AddRejection(rf.name, w.Name, fmtNum(orig), "no-fit")
					*p = nil
				case fitted != orig:
					rep.AddCorrection(rf.name, w.Name, fmtNum(orig), fmtNum(fitted), "decimal-shift")
					v := fitted
					*p = &v
				}
			}
		}
	}

	kept := make([]*workRecord, 0, len(work))
	for _, w := range work {
		if w.Price == nil {
			rep.NoPriceRowsDropped++
			continue
		}
		kept = append(kept, w)
	}
	return kept
}

// mergeAttributes is stage 4: logical attributes split across raw columns
// collapse into one, first non-null source winning. Colour additionally
// unions when basic and exact descriptions disagree.
func mergeAttributes(work []*workRecord) {
	for _, w := range work {
		w.Color = mergeColors(w.colorBasic, w.colorExact)
		if w.BatteryLifeMin == nil {
			w.BatteryLifeMin = w.batteryLifeAlt
		}
		if len(w.Ecosystems) == 0 {
			w.Ecosystems = w.ecosystemsAlt
		}
	}
}

// dedupe is stage 5: rows identical on the case-normalized
// (product_name, manufacturer) key collapse to the first occurrence.
func dedupe(work []*workRecord, rep *Report) []*workRecord {
	seen := make(map[string]bool, len(work))
	unique := make([]*workRecord, 0, len(work))
	for _, w := range work {
		id := w.Identity()
		if seen[id] {
			rep.DuplicatesRemoved++
			continue
		}
		seen[id] = true
		unique = append(unique, w)
	}
	return unique
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
