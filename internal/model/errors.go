// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, person, country, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidArgument  = "INVALID_ARGUMENT"
	ErrCodeInvalidPersonID  = "INVALID_PERSON_ID"
	ErrCodePersonNotFound   = "PERSON_NOT_FOUND"
	ErrCodeInvalidCountryID = "INVALID_COUNTRY_ID"
	ErrCodeCountryNotFound  = "COUNTRY_NOT_FOUND"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewInvalidArgumentError は必須引数がnilまたは空の場合のエラーを生成する。
// ストレージへの問い合わせより前に返される。
func NewInvalidArgumentError(argument string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidArgument,
		Message:  fmt.Sprintf("%sが指定されていません。", argument),
		Category: "validation",
		Action:   fmt.Sprintf("有効な%sを指定してください。", argument),
	}
}

// NewInvalidPersonIDError はIDの形式が不正な場合のエラーを生成する。
func NewInvalidPersonIDError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPersonID,
		Message:  fmt.Sprintf("無効な人物IDです: %s", raw),
		Category: "validation",
		Action:   "UUID形式の人物IDを指定してください。",
	}
}

// NewPersonNotFoundError は人物が見つからない場合のエラーを生成する。
func NewPersonNotFoundError(personID string) *APIError {
	return &APIError{
		Code:     ErrCodePersonNotFound,
		Message:  fmt.Sprintf("指定された人物が見つかりません: %s", personID),
		Category: "person",
		Action:   "人物IDを確認してください。",
	}
}

// NewInvalidCountryIDError は国IDの形式が不正な場合のエラーを生成する。
func NewInvalidCountryIDError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCountryID,
		Message:  fmt.Sprintf("無効な国IDです: %s", raw),
		Category: "validation",
		Action:   "UUID形式の国IDを指定してください。",
	}
}

// NewCountryNotFoundError は国が見つからない場合のエラーを生成する。
func NewCountryNotFoundError(countryID string) *APIError {
	return &APIError{
		Code:     ErrCodeCountryNotFound,
		Message:  fmt.Sprintf("指定された国が見つかりません: %s", countryID),
		Category: "country",
		Action:   "国IDを確認してください。",
	}
}

// NewRateLimitExceededError はレート制限超過時のエラーを生成する。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "Retry-Afterに示された時間が経過してから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// IsInvalidArgument はerrが不正引数エラーかどうかを判定する。
func IsInvalidArgument(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == ErrCodeInvalidArgument
}
