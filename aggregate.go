package main

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ==== Filtro e agregados por cultivo ====

const topRegionsLimit = 10

// ErrEmptyProjection: un agregado queda sen filas válidas despois de limpar.
var ErrEmptyProjection = errors.New("sen datos suficientes")

type chartKind string

const (
	chartRegions chartKind = "regions"
	chartYield   chartKind = "yield"
	chartYearly  chartKind = "yearly"
	chartScatter chartKind = "scatter"
)

var chartKinds = []chartKind{chartRegions, chartYield, chartYearly, chartScatter}

// ProjectionError indica que agregado quedou baleiro; os outros seguen.
type ProjectionError struct {
	Chart chartKind
	Err   error
}

func (e *ProjectionError) Error() string { return fmt.Sprintf("%s: %v", e.Chart, e.Err) }
func (e *ProjectionError) Unwrap() error { return e.Err }

func emptyProjection(kind chartKind) error {
	return &ProjectionError{Chart: kind, Err: ErrEmptyProjection}
}

type RegionTotal struct {
	Department    string  `json:"department"`
	HarvestedArea float64 `json:"harvestedArea"`
}

type YearTotal struct {
	Year       int     `json:"year"`
	Production float64 `json:"production"`
}

type AreaYield struct {
	HarvestedArea float64 `json:"harvestedArea"`
	Yield         float64 `json:"yield"`
	Department    string  `json:"department"`
}

// YieldStats resume a distribución do rendemento para o diagrama de caixa.
type YieldStats struct {
	Values     []float64 `json:"values"` // ordenados
	Count      int       `json:"count"`
	Min        float64   `json:"min"`
	Q1         float64   `json:"q1"`
	Median     float64   `json:"median"`
	Q3         float64   `json:"q3"`
	Max        float64   `json:"max"`
	Mean       float64   `json:"mean"`
	LowerFence float64   `json:"lowerFence"`
	UpperFence float64   `json:"upperFence"`
	Outliers   int       `json:"outliers"`
}

// Summary: os tres indicadores da cabeceira. As medias non existen se non hai valores.
type Summary struct {
	Rows            int
	TotalProduction float64
	MeanHarvested   sql.NullFloat64
	MeanYield       sql.NullFloat64
	Departments     int
	FirstYear       int
	LastYear        int
}

// filterByCrop: subsecuencia do dataset co cultivo dado, na orde orixinal
func filterByCrop(recs []Record, crop string) []Record {
	out := []Record{}
	for _, r := range recs {
		if r.Crop == crop {
			out = append(out, r)
		}
	}
	return out
}

// topRegions: área cosechada sumada por departamento, as 10 maiores.
// Os empates non teñen orde definida.
func topRegions(recs []Record) ([]RegionTotal, error) {
	sums := map[string]float64{}
	for _, r := range recs {
		if r.Department == "" {
			continue
		}
		// sum() ignora os ausentes
		sums[r.Department] += valueOr0(r.HarvestedArea)
	}
	if len(sums) == 0 {
		return nil, emptyProjection(chartRegions)
	}
	arr := make([]RegionTotal, 0, len(sums))
	for k, v := range sums {
		arr = append(arr, RegionTotal{Department: k, HarvestedArea: v})
	}
	sort.Slice(arr, func(i, j int) bool { return arr[i].HarvestedArea > arr[j].HarvestedArea })
	if len(arr) > topRegionsLimit {
		arr = arr[:topRegionsLimit]
	}
	return arr, nil
}

// yieldDistribution descarta rendementos ausentes antes de calcular cuartís.
func yieldDistribution(recs []Record) (YieldStats, error) {
	var vals []float64
	for _, r := range recs {
		if r.Yield.Valid {
			vals = append(vals, r.Yield.Float64)
		}
	}
	if len(vals) == 0 {
		return YieldStats{}, emptyProjection(chartYield)
	}
	sort.Float64s(vals)

	ys := YieldStats{
		Values: vals,
		Count:  len(vals),
		Min:    vals[0],
		Max:    vals[len(vals)-1],
		Q1:     stat.Quantile(0.25, stat.Empirical, vals, nil),
		Median: stat.Quantile(0.5, stat.Empirical, vals, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, vals, nil),
		Mean:   stat.Mean(vals, nil),
	}
	iqr := ys.Q3 - ys.Q1
	ys.LowerFence = ys.Q1 - 1.5*iqr
	ys.UpperFence = ys.Q3 + 1.5*iqr
	for _, v := range vals {
		if v < ys.LowerFence || v > ys.UpperFence {
			ys.Outliers++
		}
	}
	return ys, nil
}

// yearlyProduction: produción sumada por ano, ascendente
func yearlyProduction(recs []Record) ([]YearTotal, error) {
	sums := map[int]float64{}
	for _, r := range recs {
		sums[r.Year] += valueOr0(r.Production)
	}
	if len(sums) == 0 {
		return nil, emptyProjection(chartYearly)
	}
	out := make([]YearTotal, 0, len(sums))
	for y, v := range sums {
		out = append(out, YearTotal{Year: y, Production: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

// areaYieldPairs: unha parella por fila con área e rendemento presentes
func areaYieldPairs(recs []Record) ([]AreaYield, error) {
	var out []AreaYield
	for _, r := range recs {
		if !r.HarvestedArea.Valid || !r.Yield.Valid {
			continue
		}
		out = append(out, AreaYield{HarvestedArea: r.HarvestedArea.Float64, Yield: r.Yield.Float64, Department: r.Department})
	}
	if len(out) == 0 {
		return nil, emptyProjection(chartScatter)
	}
	return out, nil
}

func summarize(recs []Record) Summary {
	s := Summary{Rows: len(recs)}
	var harvested, yields []float64
	deps := map[string]struct{}{}
	for i, r := range recs {
		s.TotalProduction += valueOr0(r.Production)
		if r.HarvestedArea.Valid {
			harvested = append(harvested, r.HarvestedArea.Float64)
		}
		if r.Yield.Valid {
			yields = append(yields, r.Yield.Float64)
		}
		if r.Department != "" {
			deps[r.Department] = struct{}{}
		}
		if i == 0 || r.Year < s.FirstYear {
			s.FirstYear = r.Year
		}
		if r.Year > s.LastYear {
			s.LastYear = r.Year
		}
	}
	s.Departments = len(deps)
	if len(harvested) > 0 {
		s.MeanHarvested = sql.NullFloat64{Float64: stat.Mean(harvested, nil), Valid: true}
	}
	if len(yields) > 0 {
		s.MeanYield = sql.NullFloat64{Float64: stat.Mean(yields, nil), Valid: true}
	}
	return s
}

func valueOr0(v sql.NullFloat64) float64 {
	if !v.Valid {
		return 0
	}
	return v.Float64
}

// Report: todo o que se amosa para un cultivo. Cada agregado ten o seu erro.
type Report struct {
	Crop    string
	Rows    []Record
	Summary Summary

	Regions    []RegionTotal
	RegionsErr error
	Yield      YieldStats
	YieldErr   error
	Yearly     []YearTotal
	YearlyErr  error
	Pairs      []AreaYield
	PairsErr   error
}

func buildReport(ds *Dataset, crop string) *Report {
	rows := filterByCrop(ds.Records, crop)
	rep := &Report{Crop: crop, Rows: rows, Summary: summarize(rows)}
	rep.Regions, rep.RegionsErr = topRegions(rows)
	rep.Yield, rep.YieldErr = yieldDistribution(rows)
	rep.Yearly, rep.YearlyErr = yearlyProduction(rows)
	rep.Pairs, rep.PairsErr = areaYieldPairs(rows)
	return rep
}

// Errors devolve os agregados baleiros, por gráfica.
func (r *Report) Errors() map[chartKind]error {
	out := map[chartKind]error{}
	for _, k := range chartKinds {
		if err := r.chartErr(k); err != nil {
			out[k] = err
		}
	}
	return out
}

func (r *Report) chartErr(k chartKind) error {
	switch k {
	case chartRegions:
		return r.RegionsErr
	case chartYield:
		return r.YieldErr
	case chartYearly:
		return r.YearlyErr
	case chartScatter:
		return r.PairsErr
	}
	return fmt.Errorf("gráfica descoñecida: %s", k)
}
