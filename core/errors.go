package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 特征层错误：SCHEMA_ERROR（fit 时字段缺失/畸形）
//   - 相似度层错误：INSUFFICIENT_DATA（样本太少，无法建索引/分位数）
//   - 引擎错误：MODEL_NOT_TRAINED（train 之前发起查询）
//   - 存储错误：NOT_FOUND（显式按 ID 查询不存在的用户/商品）
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "SCHEMA_ERROR"）
	Message string // 错误消息
	Module  string // 模块名称（如 "feature", "knn", "engine"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*DomainError)
	return ok
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeSchema           = "SCHEMA_ERROR"      // 特征字段缺失或畸形
	ErrorCodeInsufficientData = "INSUFFICIENT_DATA" // 样本太少
	ErrorCodeModelNotTrained  = "MODEL_NOT_TRAINED" // 模型未训练
	ErrorCodeNotFound         = "NOT_FOUND"         // 资源不存在
	ErrorCodeNotSupported     = "NOT_SUPPORTED"     // 操作不支持
	ErrorCodeInvalidInput     = "INVALID_INPUT"     // 输入无效
)

// 模块名称常量
const (
	ModuleFeature = "feature" // 特征模块
	ModuleKNN     = "knn"     // 相似度检索模块
	ModuleSegment = "segment" // 分群模块
	ModuleCluster = "cluster" // 聚类模块
	ModuleEngine  = "engine"  // 编排引擎
	ModuleStore   = "store"   // 存储模块
)

// 通用错误检查函数

// IsSchemaError 检查错误是否为 SCHEMA_ERROR
func IsSchemaError(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeSchema
	}
	return false
}

// IsInsufficientData 检查错误是否为 INSUFFICIENT_DATA
func IsInsufficientData(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInsufficientData
	}
	return false
}

// IsModelNotTrained 检查错误是否为 MODEL_NOT_TRAINED
func IsModelNotTrained(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeModelNotTrained
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}
