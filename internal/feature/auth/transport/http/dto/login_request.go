// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// LoginReq は/api/auth/loginのリクエストボディです。
// メール形式はここでは検証せず、誤りはすべて認証失敗として扱います。
type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
