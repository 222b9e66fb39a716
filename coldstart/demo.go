package coldstart

import (
	"github.com/rushteam/persokit/core"
	"github.com/rushteam/persokit/feature"
	"github.com/rushteam/persokit/knn"
)

// DemoModel 是人群近邻信号的模型三件套：
// one-hot 编码器 + 向量化器 + 欧氏 KNN 索引，三者共享同一字段顺序。
// 人群向量小而稠密，用欧氏距离；索引与查询必须同 schema。
type DemoModel struct {
	Encoder    *feature.OneHotEncoder
	Vectorizer *feature.Vectorizer
	Index      *knn.Index
}

// BuildDemoModel 在画像总体上训练人群近邻模型。
// 画像不足 2 个时由 knn.Fit 返回 INSUFFICIENT_DATA。
func BuildDemoModel(profiles []*core.UserProfile, cal core.HolidayCalendar) (*DemoModel, error) {
	records := make([]feature.DemoRecord, 0, len(profiles))
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p == nil || p.UserID == "" {
			continue
		}
		records = append(records, feature.DemoFromProfile(p, cal))
		ids = append(ids, p.UserID)
	}

	// 类别列先在总体上拟合 one-hot（含 missing 兜底类别）
	columns := make(map[string][]string, len(feature.DemoCategoricalFields))
	for _, field := range feature.DemoCategoricalFields {
		values := make([]string, len(records))
		for i, rec := range records {
			values[i] = rec.Categorical[field]
		}
		columns[field] = values
	}
	encoder := feature.FitOneHot(columns)

	// 字段顺序：数值列在前，类别展开列按声明顺序在后
	fields := make([]string, 0, 16)
	fields = append(fields, feature.DemoNumericFields...)
	for _, field := range feature.DemoCategoricalFields {
		fields = append(fields, encoder.EncodedFields(field)...)
	}

	population := make([]map[string]float64, len(records))
	for i, rec := range records {
		population[i] = rec.Flatten(encoder)
	}

	vectorizer := feature.NewVectorizer(fields, feature.ImputeMedian)
	vectors, err := vectorizer.FitTransform(population)
	if err != nil {
		return nil, err
	}

	index := knn.NewIndex(knn.MetricEuclidean)
	index.SetSchemaVersion(vectorizer.SchemaVersion())
	if err := index.Fit(ids, vectors); err != nil {
		return nil, err
	}
	return &DemoModel{Encoder: encoder, Vectorizer: vectorizer, Index: index}, nil
}

// QueryVector 把一条人群记录转为查询向量；overrides 覆盖铺平后的同名列。
func (m *DemoModel) QueryVector(rec feature.DemoRecord, overrides map[string]float64) ([]float64, error) {
	flat := rec.Flatten(m.Encoder)
	for k, v := range overrides {
		flat[k] = v
	}
	return m.Vectorizer.Transform(flat)
}
