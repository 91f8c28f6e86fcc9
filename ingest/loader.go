package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/raven2t2/importiq-backend/v1/models"
)

// LoadResult summarizes one fixture load.
type LoadResult struct {
	RecordsRead     int   `json:"recordsRead"`
	RecordsInserted int64 `json:"recordsInserted"`
	RecordsSkipped  int64 `json:"recordsSkipped"`
}

// Loader inserts fixture and feed data into the database. All inserts use
// ON CONFLICT DO NOTHING semantics so repeated loads are idempotent.
type Loader struct {
	db *gorm.DB
}

func NewLoader(db *gorm.DB) *Loader {
	return &Loader{db: db}
}

// LoadAuctionsFile reads a CSV or JSON fixture of auction listings and inserts them,
// deduplicating on (source, lot_number).
func (l *Loader) LoadAuctionsFile(ctx context.Context, path string) (*LoadResult, error) {
	var listings []models.VehicleAuction
	if err := readFixtureFile(path, &listings); err != nil {
		return nil, err
	}
	return l.LoadAuctions(ctx, listings)
}

// LoadAuctions inserts auction listings, deduplicating on (source, lot_number).
func (l *Loader) LoadAuctions(ctx context.Context, listings []models.VehicleAuction) (*LoadResult, error) {
	if len(listings) == 0 {
		return &LoadResult{}, nil
	}

	for i := range listings {
		if listings[i].Source == "" || listings[i].LotNumber == "" {
			return nil, fmt.Errorf("listing %d missing source or lot number", i)
		}
		if listings[i].AuctionID == "" {
			listings[i].AuctionID = "auc_" + uuid.New().String()
		}
	}

	result := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}, {Name: "lot_number"}},
		DoNothing: true,
	}).Create(&listings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to insert auction listings: %w", result.Error)
	}

	return newLoadResult(len(listings), result.RowsAffected), nil
}

// LoadComplianceRulesFile reads a CSV or JSON fixture of compliance rules and
// inserts them, skipping rows whose rule_id already exists.
func (l *Loader) LoadComplianceRulesFile(ctx context.Context, path string) (*LoadResult, error) {
	var rules []models.ComplianceRule
	if err := readFixtureFile(path, &rules); err != nil {
		return nil, err
	}
	return l.LoadComplianceRules(ctx, rules)
}

// LoadComplianceRules inserts compliance rules, skipping existing rule IDs.
func (l *Loader) LoadComplianceRules(ctx context.Context, rules []models.ComplianceRule) (*LoadResult, error) {
	if len(rules) == 0 {
		return &LoadResult{}, nil
	}

	for i := range rules {
		if rules[i].RuleID == "" {
			rules[i].RuleID = "rul_" + uuid.New().String()
		}
	}

	result := l.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rules)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to insert compliance rules: %w", result.Error)
	}
	return newLoadResult(len(rules), result.RowsAffected), nil
}

// LoadDutyRatesFile reads a CSV or JSON fixture of tariff lines and inserts them,
// deduplicating on (country, tariff_code).
func (l *Loader) LoadDutyRatesFile(ctx context.Context, path string) (*LoadResult, error) {
	var rates []models.DutyRate
	if err := readFixtureFile(path, &rates); err != nil {
		return nil, err
	}
	return l.LoadDutyRates(ctx, rates)
}

// LoadDutyRates inserts tariff lines, deduplicating on (country, tariff_code).
func (l *Loader) LoadDutyRates(ctx context.Context, rates []models.DutyRate) (*LoadResult, error) {
	if len(rates) == 0 {
		return &LoadResult{}, nil
	}

	for i := range rates {
		if rates[i].Country == "" || rates[i].TariffCode == "" {
			return nil, fmt.Errorf("duty rate %d missing country or tariff code", i)
		}
		if rates[i].RateID == "" {
			rates[i].RateID = "rat_" + uuid.New().String()
		}
	}

	result := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "country"}, {Name: "tariff_code"}},
		DoNothing: true,
	}).Create(&rates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to insert duty rates: %w", result.Error)
	}
	return newLoadResult(len(rates), result.RowsAffected), nil
}

// LoadPortsFile reads a CSV or JSON fixture of port information and inserts it,
// skipping ports whose port_code already exists.
func (l *Loader) LoadPortsFile(ctx context.Context, path string) (*LoadResult, error) {
	var ports []models.PortInformation
	if err := readFixtureFile(path, &ports); err != nil {
		return nil, err
	}
	if len(ports) == 0 {
		return &LoadResult{}, nil
	}

	for i := range ports {
		if ports[i].PortCode == "" {
			return nil, fmt.Errorf("port %d missing port code", i)
		}
		if ports[i].PortID == "" {
			ports[i].PortID = "prt_" + uuid.New().String()
		}
	}

	result := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "port_code"}},
		DoNothing: true,
	}).Create(&ports)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to insert ports: %w", result.Error)
	}
	return newLoadResult(len(ports), result.RowsAffected), nil
}

// LoadModShopsFile reads a CSV or JSON fixture of mod shop partners (with nested
// service areas) and inserts them, skipping shops whose email already exists.
func (l *Loader) LoadModShopsFile(ctx context.Context, path string) (*LoadResult, error) {
	var shops []models.ModShopPartner
	if err := readFixtureFile(path, &shops); err != nil {
		return nil, err
	}
	if len(shops) == 0 {
		return &LoadResult{}, nil
	}

	for i := range shops {
		if shops[i].Email == "" {
			return nil, fmt.Errorf("shop %d missing email", i)
		}
		if shops[i].ShopID == "" {
			shops[i].ShopID = "shp_" + uuid.New().String()
		}
		for j := range shops[i].ServiceAreas {
			shops[i].ServiceAreas[j].ShopID = shops[i].ShopID
			if shops[i].ServiceAreas[j].AreaID == "" {
				shops[i].ServiceAreas[j].AreaID = "are_" + uuid.New().String()
			}
		}
	}

	result := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&shops)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to insert mod shops: %w", result.Error)
	}
	return newLoadResult(len(shops), result.RowsAffected), nil
}

// LoadAll loads every fixture file found in the given map of entity name to
// file path. Unknown entity names are an error.
func (l *Loader) LoadAll(ctx context.Context, fixtures map[string]string) (map[string]*LoadResult, error) {
	loaders := map[string]func(context.Context, string) (*LoadResult, error){
		"auctions":         l.LoadAuctionsFile,
		"compliance_rules": l.LoadComplianceRulesFile,
		"duty_rates":       l.LoadDutyRatesFile,
		"ports":            l.LoadPortsFile,
		"mod_shops":        l.LoadModShopsFile,
	}

	results := make(map[string]*LoadResult, len(fixtures))
	for entity, path := range fixtures {
		load, ok := loaders[entity]
		if !ok {
			return nil, fmt.Errorf("unknown fixture entity: %s", entity)
		}
		result, err := load(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s from %s: %w", entity, path, err)
		}
		slog.Info("Loaded fixture",
			"entity", entity,
			"path", path,
			"read", result.RecordsRead,
			"inserted", result.RecordsInserted,
			"skipped", result.RecordsSkipped)
		results[entity] = result
	}
	return results, nil
}

func newLoadResult(read int, inserted int64) *LoadResult {
	return &LoadResult{
		RecordsRead:     read,
		RecordsInserted: inserted,
		RecordsSkipped:  int64(read) - inserted,
	}
}

// readFixtureFile parses a fixture into out. CSV files are dispatched on the
// .csv extension; everything else is treated as JSON.
func readFixtureFile(path string, out interface{}) error {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		records, err := readCSVFile(path)
		if err != nil {
			return err
		}
		return remarshal(records, out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fixture file: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse fixture file %s: %w", path, err)
	}
	return nil
}

// readCSVFile reads a header-row CSV into generic records. Numeric cells are
// converted so they can populate int and float model fields; empty cells are
// omitted.
func readCSVFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse fixture file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("fixture file %s has no header row", path)
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(Record, len(header))
		for i, key := range header {
			if i >= len(row) {
				break
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			if n, err := strconv.ParseFloat(cell, 64); err == nil {
				record[key] = n
			} else {
				record[key] = cell
			}
		}
		records = append(records, record)
	}
	return records, nil
}
