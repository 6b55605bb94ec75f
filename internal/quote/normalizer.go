package quote

import (
	"strconv"
	"strings"
	"time"

	"DividendDash/internal/model"
)

// fieldMap describes where a schema keeps each canonical field and which
// conventions it uses. The yield scale (fraction vs percent) and the date
// encoding (epoch seconds vs ISO strings) are the two known cross-source
// inconsistencies; this table is the only place they are resolved.
type fieldMap struct {
	ticker    string
	name      string
	altName   string
	price     string
	currency  string
	dividend  string
	yield     string
	sector    string
	industry  string
	marketCap string
	exDate    string
	nextDate  string
	change    string
	changePct string

	yieldInPercent bool
	datesAsEpoch   bool
	deriveYield    bool // compute yield from dividend/price when absent
}

var schemaFields = map[Schema]fieldMap{
	SchemaYahoo: {
		ticker:    "symbol",
		name:      "shortName",
		altName:   "longName",
		price:     "regularMarketPrice",
		currency:  "currency",
		dividend:  "trailingAnnualDividendRate",
		yield:     "trailingAnnualDividendYield",
		sector:    "sector",
		industry:  "industry",
		marketCap: "marketCap",
		exDate:    "exDividendDate",
		nextDate:  "dividendDate",
		change:    "regularMarketChange",
		changePct: "regularMarketChangePercent",

		datesAsEpoch: true,
	},
	SchemaFunction: {
		ticker:    "ticker",
		name:      "name",
		price:     "price",
		currency:  "currency",
		dividend:  "annualDividend",
		yield:     "dividendYield",
		sector:    "sector",
		industry:  "industry",
		marketCap: "marketCap",
		exDate:    "exDividendDate",
		nextDate:  "nextDividendDate",
		change:    "change",
		changePct: "changePercent",

		yieldInPercent: true,
	},
	SchemaSheet: {
		ticker:    "Ticker",
		name:      "Name",
		price:     "Price",
		currency:  "Currency",
		dividend:  "Annual Dividend",
		yield:     "Yield %",
		sector:    "Sector",
		industry:  "Industry",
		marketCap: "Market Cap",
		exDate:    "Ex-Dividend Date",
		nextDate:  "Next Dividend Date",
		change:    "Change",
		changePct: "Change %",

		yieldInPercent: true,
	},
	SchemaFMP: {
		ticker:    "symbol",
		name:      "companyName",
		price:     "price",
		currency:  "currency",
		dividend:  "lastDiv",
		sector:    "sector",
		industry:  "industry",
		marketCap: "mktCap",
		change:    "changes",

		deriveYield: true,
	},
}

// Normalize maps one raw upstream payload into the canonical record shape.
// Missing or malformed fields fall back to defaults; data quality is never
// an error at this layer.
func Normalize(raw RawQuote, schema Schema) model.StockRecord {
	fm, ok := schemaFields[schema]
	if !ok {
		fm = schemaFields[SchemaFunction]
	}

	rec := model.StockRecord{
		Ticker:        strings.ToUpper(strings.TrimSpace(asString(raw[fm.ticker]))),
		Name:          asString(raw[fm.name]),
		Price:         asFloat(raw[fm.price]),
		Currency:      asString(raw[fm.currency]),
		AnnualDividend: asFloat(raw[fm.dividend]),
		Sector:        asString(raw[fm.sector]),
		Industry:      asString(raw[fm.industry]),
		MarketCap:     asFloat(raw[fm.marketCap]),
		Change:        asFloat(raw[fm.change]),
		ChangePercent: asFloat(raw[fm.changePct]),
	}
	if rec.Name == "" && fm.altName != "" {
		rec.Name = asString(raw[fm.altName])
	}
	if rec.Price < 0 {
		rec.Price = 0
	}
	if rec.AnnualDividend < 0 {
		rec.AnnualDividend = 0
	}
	if rec.MarketCap < 0 {
		rec.MarketCap = 0
	}
	if rec.Sector == "" {
		rec.Sector = "Unknown"
	}
	if rec.Industry == "" {
		rec.Industry = "Unknown"
	}

	yield := asFloat(raw[fm.yield])
	if fm.yieldInPercent {
		yield /= 100
	}
	if yield == 0 && fm.deriveYield && rec.Price > 0 {
		yield = rec.AnnualDividend / rec.Price
	}
	if yield < 0 {
		yield = 0
	}
	rec.DividendYield = yield

	rec.ExDividendDate = asTime(raw[fm.exDate], fm.datesAsEpoch)
	rec.NextDividendDate = asTime(raw[fm.nextDate], fm.datesAsEpoch)

	return rec
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// asFloat coerces JSON numbers and numeric strings (spreadsheet cells,
// possibly with thousands separators or a percent sign) into a float64.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimSuffix(s, "%")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// asTime parses a date field: Unix epoch seconds when epoch is set,
// otherwise an ISO-8601 string. Absent or zero values become nil.
func asTime(v any, epoch bool) *time.Time {
	if v == nil {
		return nil
	}
	if epoch {
		secs := int64(asFloat(v))
		if secs == 0 {
			return nil
		}
		t := time.Unix(secs, 0).UTC()
		return &t
	}
	s := asString(v)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
