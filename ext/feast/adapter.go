// Package feast 提供 Feast 特征仓库到 core.ProfileStore 的适配。
//
// 适配面向请求路径：单用户画像从 Feast 在线特征取回。
// 在线存储不支持实体枚举，ListProfiles 返回 NOT_SUPPORTED——
// 重训请走批量存储（store.RedisStore / 离线导出）。
package feast

import (
	"context"
	"fmt"
	"time"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/rushteam/persokit/core"
	"github.com/rushteam/persokit/pkg/conv"
)

// DefaultFeatures 是画像特征的默认 Feature 引用（feature_view:name）。
var DefaultFeatures = []string{
	"user_stats:total_sessions",
	"user_stats:total_duration_seconds",
	"user_stats:avg_session_duration",
	"user_stats:total_page_views",
	"user_stats:total_product_views",
	"user_stats:total_add_to_cart",
	"user_stats:total_purchases",
	"user_stats:conversion_rate",
	"user_stats:unique_products_viewed",
	"user_stats:unique_categories_viewed",
	"user_stats:transactions",
	"user_stats:total_spent",
	"user_stats:last_active_unix",
	"user_prefs:primary_device",
	"user_prefs:primary_category",
	"user_prefs:common_session_type",
	"user_demo:age",
	"user_demo:gender",
	"user_demo:region",
}

// ProfileStore 是基于官方 Feast Go SDK 的画像存储适配器。
type ProfileStore struct {
	client   *feastsdk.GrpcClient
	project  string
	features []string
}

// NewProfileStore 连接 Feast Feature Server 并创建适配器。
// features 为空时使用 DefaultFeatures。
func NewProfileStore(host string, port int, project string, features []string) (*ProfileStore, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("feast grpc client: %w", err)
	}
	if len(features) == 0 {
		features = DefaultFeatures
	}
	return &ProfileStore{client: client, project: project, features: features}, nil
}

// GetProfile 实现 core.ProfileStore：单用户在线特征取回并映射到画像。
func (s *ProfileStore) GetProfile(ctx context.Context, userID string) (*core.UserProfile, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput,
			"feast get profile: empty user id")
	}

	req := &feastsdk.OnlineFeaturesRequest{
		Features: s.features,
		Entities: []feastsdk.Row{{"user_id": feastsdk.StrVal(userID)}},
		Project:  s.project,
	}
	resp, err := s.client.GetOnlineFeatures(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("feast get online features: %w", err)
	}
	rows := resp.Rows()
	if len(rows) == 0 {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound,
			"profile not found: "+userID)
	}

	values := make(map[string]any, len(rows[0]))
	for name, val := range rows[0] {
		if v := valueToAny(val); v != nil {
			values[shortName(name)] = v
		}
	}
	return profileFromValues(userID, values), nil
}

// ListProfiles 实现 core.ProfileStore。在线存储无法枚举实体。
func (s *ProfileStore) ListProfiles(context.Context) ([]*core.UserProfile, error) {
	return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported,
		"feast online store cannot enumerate profiles; use a batch store for training")
}

// profileFromValues 把特征字典映射为画像；缺失/畸形字段守卫式回退零值。
func profileFromValues(userID string, values map[string]any) *core.UserProfile {
	p := core.NewUserProfile(userID)
	p.TotalSessions = intOr(values["total_sessions"])
	p.TotalDurationSeconds = conv.Float64Or(values["total_duration_seconds"], 0)
	p.AvgSessionDuration = conv.Float64Or(values["avg_session_duration"], 0)
	p.TotalPageViews = intOr(values["total_page_views"])
	p.TotalProductViews = intOr(values["total_product_views"])
	p.TotalAddToCart = intOr(values["total_add_to_cart"])
	p.TotalPurchases = intOr(values["total_purchases"])
	p.ConversionRate = conv.Float64Or(values["conversion_rate"], 0)
	p.UniqueProductsViewed = intOr(values["unique_products_viewed"])
	p.UniqueCategoriesViewed = intOr(values["unique_categories_viewed"])
	p.Transactions = intOr(values["transactions"])
	p.TotalSpent = conv.Float64Or(values["total_spent"], 0)
	if unix := int64(intOr(values["last_active_unix"])); unix > 0 {
		p.LastActive = time.Unix(unix, 0).UTC()
	}
	p.PrimaryDevice = stringOr(values["primary_device"])
	p.PrimaryCategory = stringOr(values["primary_category"])
	p.CommonSessionType = stringOr(values["common_session_type"])
	p.Age = intOr(values["age"])
	p.Gender = stringOr(values["gender"])
	p.Region = stringOr(values["region"])
	return p
}

// valueToAny 从 SDK 的 protobuf Value 提取 Go 原生值。
func valueToAny(val *feasttypes.Value) any {
	if val == nil {
		return nil
	}
	switch v := val.GetVal().(type) {
	case *feasttypes.Value_StringVal:
		return v.StringVal
	case *feasttypes.Value_Int32Val:
		return v.Int32Val
	case *feasttypes.Value_Int64Val:
		return v.Int64Val
	case *feasttypes.Value_FloatVal:
		return v.FloatVal
	case *feasttypes.Value_DoubleVal:
		return v.DoubleVal
	case *feasttypes.Value_BoolVal:
		return v.BoolVal
	case *feasttypes.Value_BytesVal:
		return string(v.BytesVal)
	default:
		return nil
	}
}

// shortName 取 "feature_view:name" 的 name 部分。
func shortName(ref string) string {
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == ':' {
			return ref[i+1:]
		}
	}
	return ref
}

func intOr(v any) int {
	if i, ok := conv.ToInt(v); ok {
		return i
	}
	return 0
}

func stringOr(v any) string {
	if s, ok := conv.ToString(v); ok {
		return s
	}
	return ""
}

var _ core.ProfileStore = (*ProfileStore)(nil)
