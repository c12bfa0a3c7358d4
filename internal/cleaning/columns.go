package cleaning

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"robovac/internal/model"
)

// TagSeparator joins set-valued fields in the cleaned CSV.
const TagSeparator = "|"

// columnSpec describes one cleaned column: its presence test and clearer
// operate on the working record (pruning runs before merging), the cell
// renderer on the final product.
type columnSpec struct {
	name     string
	required bool
	present  func(w *workRecord) bool
	clear    func(w *workRecord)
	cell     func(p *model.CleanedProduct) string
}

func strColumn(name string, wf func(w *workRecord) *string, pf func(p *model.CleanedProduct) *string) columnSpec {
	return columnSpec{
		name:    name,
		present: func(w *workRecord) bool { return *wf(w) != "" },
		clear:   func(w *workRecord) { *wf(w) = "" },
		cell:    func(p *model.CleanedProduct) string { return *pf(p) },
	}
}

func numColumn(name string, wf func(w *workRecord) **float64, pf func(p *model.CleanedProduct) **float64) columnSpec {
	return columnSpec{
		name:    name,
		present: func(w *workRecord) bool { return *wf(w) != nil },
		clear:   func(w *workRecord) { *wf(w) = nil },
		cell: func(p *model.CleanedProduct) string {
			if v := *pf(p); v != nil {
				return fmtNum(*v)
			}
			return ""
		},
	}
}

func tagColumn(name string, wf func(w *workRecord) *[]string, pf func(p *model.CleanedProduct) *[]string) columnSpec {
	return columnSpec{
		name:    name,
		present: func(w *workRecord) bool { return len(*wf(w)) > 0 },
		clear:   func(w *workRecord) { *wf(w) = nil },
		cell:    func(p *model.CleanedProduct) string { return strings.Join(*pf(p), TagSeparator) },
	}
}

// cleanedColumns fixes the canonical schema and its order. product_name and
// price are required and exempt from pruning.
var cleanedColumns = []columnSpec{
	{
		name:     "product_name",
		required: true,
		present:  func(w *workRecord) bool { return w.Name != "" },
		clear:    func(w *workRecord) {},
		cell:     func(p *model.CleanedProduct) string { return p.Name },
	},
	strColumn("manufacturer",
		func(w *workRecord) *string { return &w.Manufacturer },
		func(p *model.CleanedProduct) *string { return &p.Manufacturer }),
	strColumn("robot_type",
		func(w *workRecord) *string { return &w.RobotType },
		func(p *model.CleanedProduct) *string { return &p.RobotType }),
	{
		name:     ColPrice,
		required: true,
		present:  func(w *workRecord) bool { return w.Price != nil },
		clear:    func(w *workRecord) {},
		cell: func(p *model.CleanedProduct) string {
			if p.Price != nil {
				return fmtNum(*p.Price)
			}
			return ""
		},
	},
	numColumn("rating",
		func(w *workRecord) **float64 { return &w.Rating },
		func(p *model.CleanedProduct) **float64 { return &p.Rating }),
	{
		name:    "rating_count",
		present: func(w *workRecord) bool { return w.RatingCount != nil },
		clear:   func(w *workRecord) { w.RatingCount = nil },
		cell: func(p *model.CleanedProduct) string {
			if p.RatingCount != nil {
				return strconv.Itoa(*p.RatingCount)
			}
			return ""
		},
	},
	numColumn(ColBatteryCapacity,
		func(w *workRecord) **float64 { return &w.BatteryCapacityMAh },
		func(p *model.CleanedProduct) **float64 { return &p.BatteryCapacityMAh }),
	{
		name: ColBatteryLife,
		present: func(w *workRecord) bool {
			return w.BatteryLifeMin != nil || w.batteryLifeAlt != nil
		},
		clear: func(w *workRecord) {
			w.BatteryLifeMin, w.batteryLifeAlt = nil, nil
		},
		cell: func(p *model.CleanedProduct) string {
			if p.BatteryLifeMin != nil {
				return fmtNum(*p.BatteryLifeMin)
			}
			return ""
		},
	},
	numColumn(ColChargingTime,
		func(w *workRecord) **float64 { return &w.ChargingTimeMin },
		func(p *model.CleanedProduct) **float64 { return &p.ChargingTimeMin }),
	strColumn("battery_type",
		func(w *workRecord) *string { return &w.BatteryType },
		func(p *model.CleanedProduct) *string { return &p.BatteryType }),
	numColumn(ColSuctionPower,
		func(w *workRecord) **float64 { return &w.SuctionPowerPa },
		func(p *model.CleanedProduct) **float64 { return &p.SuctionPowerPa }),
	numColumn(ColRoomArea,
		func(w *workRecord) **float64 { return &w.RoomAreaM2 },
		func(p *model.CleanedProduct) **float64 { return &p.RoomAreaM2 }),
	numColumn(ColNoiseLevel,
		func(w *workRecord) **float64 { return &w.NoiseLevelDB },
		func(p *model.CleanedProduct) **float64 { return &p.NoiseLevelDB }),
	numColumn("height_cm",
		func(w *workRecord) **float64 { return &w.HeightCM },
		func(p *model.CleanedProduct) **float64 { return &p.HeightCM }),
	numColumn("max_threshold_mm",
		func(w *workRecord) **float64 { return &w.MaxThresholdMM },
		func(p *model.CleanedProduct) **float64 { return &p.MaxThresholdMM }),
	numColumn("dust_capacity_l",
		func(w *workRecord) **float64 { return &w.DustCapacityL },
		func(p *model.CleanedProduct) **float64 { return &p.DustCapacityL }),
	numColumn("water_capacity_l",
		func(w *workRecord) **float64 { return &w.WaterCapacityL },
		func(p *model.CleanedProduct) **float64 { return &p.WaterCapacityL }),
	numColumn("weight_kg",
		func(w *workRecord) **float64 { return &w.WeightKG },
		func(p *model.CleanedProduct) **float64 { return &p.WeightKG }),
	{
		name: "color",
		present: func(w *workRecord) bool {
			return w.colorBasic != "" || w.colorExact != ""
		},
		clear: func(w *workRecord) {
			w.colorBasic, w.colorExact, w.Color = "", "", ""
		},
		cell: func(p *model.CleanedProduct) string { return p.Color },
	},
	strColumn("country_of_origin",
		func(w *workRecord) *string { return &w.CountryOfOrigin },
		func(p *model.CleanedProduct) *string { return &p.CountryOfOrigin }),
	tagColumn("features",
		func(w *workRecord) *[]string { return &w.Features },
		func(p *model.CleanedProduct) *[]string { return &p.Features }),
	tagColumn("surfaces",
		func(w *workRecord) *[]string { return &w.Surfaces },
		func(p *model.CleanedProduct) *[]string { return &p.Surfaces }),
	{
		name: "smart_home_ecosystems",
		present: func(w *workRecord) bool {
			return len(w.Ecosystems) > 0 || len(w.ecosystemsAlt) > 0
		},
		clear: func(w *workRecord) {
			w.Ecosystems, w.ecosystemsAlt = nil, nil
		},
		cell: func(p *model.CleanedProduct) string {
			return strings.Join(p.Ecosystems, TagSeparator)
		},
	},
}

// WriteCSV writes the cleaned dataset with the result's schema.
func (r *Result) WriteCSV(w io.Writer) error {
	keep := make(map[string]bool, len(r.Columns))
	for _, c := range r.Columns {
		keep[c] = true
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(r.Columns); err != nil {
		return err
	}
	for i := range r.Products {
		p := &r.Products[i]
		row := make([]string, 0, len(r.Columns))
		for _, col := range cleanedColumns {
			if keep[col.name] {
				row = append(row, col.cell(p))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the cleaned CSV to path.
func (r *Result) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
