package cleaning

// Range is a configured plausibility window for one numeric field.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Canonical names of the range-checked numeric columns.
const (
	ColPrice           = "price"
	ColBatteryCapacity = "battery_capacity_mah"
	ColBatteryLife     = "battery_life_min"
	ColChargingTime    = "charging_time_min"
	ColSuctionPower    = "suction_power_pa"
	ColRoomArea        = "room_area_m2"
	ColNoiseLevel      = "noise_level_db"
)

// DefaultRanges returns the plausible ranges for robot vacuum listings.
// Price is in CHF, capacity in mAh.
func DefaultRanges() map[string]Range {
	return map[string]Range{
		ColPrice:           {Min: 50, Max: 3000},
		ColBatteryCapacity: {Min: 1000, Max: 10000},
		ColBatteryLife:     {Min: 30, Max: 600},
		ColSuctionPower:    {Min: 1000, Max: 30000},
		ColRoomArea:        {Min: 20, Max: 500},
	}
}

// Scales tried by the decimal-shift rule, in order. Divisions come first:
// the common entry errors are prices keyed in cents and capacities keyed
// with extra trailing zeros.
var shiftScales = []float64{10, 100, 1000}

// FitToRange applies the decimal-shift rule. A value already inside the
// range passes through unchanged. An out-of-range value is scaled by powers
// of ten; the first scaling that lands inside the range wins. The second
// return is false when no scaling fits and the value must be rejected.
//
// The same value under the same range always yields the same outcome.
func FitToRange(v float64, r Range) (float64, bool) {
	if r.Contains(v) {
		return v, true
	}
	for _, s := range shiftScales {
		if c := v / s; r.Contains(c) {
			return c, true
		}
	}
	for _, s := range shiftScales {
		if c := v * s; r.Contains(c) {
			return c, true
		}
	}
	return 0, false
}
