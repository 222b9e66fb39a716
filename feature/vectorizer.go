package feature

import (
	"strings"

	"github.com/rushteam/persokit/core"
)

// ImputeStrategy 是缺失值插补策略。
type ImputeStrategy string

const (
	ImputeZero   ImputeStrategy = "zero"   // 缺失补 0
	ImputeMedian ImputeStrategy = "median" // 缺失补总体中位数
)

// Vectorizer 将画像/目录记录转为固定字段顺序的数值向量。
//
// 约束：
//   - Fit 在总体上拟合一次（插补默认值 + Z-score 参数），之后只 Transform
//   - 单条查询绝不触发重拟合
//   - 总体索引与查询向量必须来自同一 SchemaVersion
type Vectorizer struct {
	fields   []string
	impute   ImputeStrategy
	defaults map[string]float64
	scaler   *ZScoreNormalizer
	fitted   bool
}

// NewVectorizer 创建向量化器；fields 决定输出向量的字段顺序。
func NewVectorizer(fields []string, impute ImputeStrategy) *Vectorizer {
	if impute == "" {
		impute = ImputeZero
	}
	fs := make([]string, len(fields))
	copy(fs, fields)
	return &Vectorizer{
		fields:   fs,
		impute:   impute,
		defaults: make(map[string]float64),
	}
}

// Fit 在总体上拟合插补默认值与缩放参数。
// 总体为空或字段表为空时返回 SCHEMA_ERROR。
func (v *Vectorizer) Fit(population []map[string]float64) error {
	if len(population) == 0 {
		return core.NewDomainError(core.ModuleFeature, core.ErrorCodeSchema,
			"vectorizer fit: empty population")
	}
	if len(v.fields) == 0 {
		return core.NewDomainError(core.ModuleFeature, core.ErrorCodeSchema,
			"vectorizer fit: empty field order")
	}

	// 先算插补默认值（median 策略用各列已有取值的中位数）
	for _, field := range v.fields {
		switch v.impute {
		case ImputeMedian:
			present := make([]float64, 0, len(population))
			for _, rec := range population {
				if val, ok := rec[field]; ok {
					present = append(present, val)
				}
			}
			v.defaults[field] = Median(present)
		default:
			v.defaults[field] = 0
		}
	}

	// 插补后按列拟合 Z-score
	columns := make(map[string][]float64, len(v.fields))
	for _, field := range v.fields {
		col := make([]float64, len(population))
		for i, rec := range population {
			col[i] = v.valueOrDefault(rec, field)
		}
		columns[field] = col
	}
	v.scaler = FitZScore(columns)
	v.fitted = true
	return nil
}

// Transform 应用已拟合的插补/缩放，按固定字段顺序输出向量。
// 未 Fit 时返回 MODEL_NOT_TRAINED。
func (v *Vectorizer) Transform(record map[string]float64) ([]float64, error) {
	if !v.fitted {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeModelNotTrained,
			"vectorizer transform: fit has not been called")
	}
	vec := make([]float64, len(v.fields))
	for i, field := range v.fields {
		vec[i] = v.scaler.NormalizeWithKey(field, v.valueOrDefault(record, field))
	}
	return vec, nil
}

// FitTransform 拟合并转换整个总体（建索引用）。
func (v *Vectorizer) FitTransform(population []map[string]float64) ([][]float64, error) {
	if err := v.Fit(population); err != nil {
		return nil, err
	}
	out := make([][]float64, len(population))
	for i, rec := range population {
		vec, err := v.Transform(rec)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Fitted 返回是否已拟合。
func (v *Vectorizer) Fitted() bool { return v.fitted }

// Fields 返回字段顺序（副本）。
func (v *Vectorizer) Fields() []string {
	fs := make([]string, len(v.fields))
	copy(fs, v.fields)
	return fs
}

// SchemaVersion 返回特征模式版本标识：索引侧与查询侧必须一致。
func (v *Vectorizer) SchemaVersion() string {
	return strings.Join(v.fields, ",")
}

func (v *Vectorizer) valueOrDefault(record map[string]float64, field string) float64 {
	if val, ok := record[field]; ok {
		return val
	}
	return v.defaults[field]
}
