package domain

import (
	"fmt"
	"strings"
)

// AssetType represents the Stellar asset type classification as reported by Horizon.
type AssetType string

const (
	AssetTypeNative             AssetType = "native"
	AssetTypeCreditAlphanum4    AssetType = "credit_alphanum4"
	AssetTypeCreditAlphanum12   AssetType = "credit_alphanum12"
	AssetTypeLiquidityPoolShare AssetType = "liquidity_pool_shares"
)

// NativeAssetKey is the canonical key of the native asset.
const NativeAssetKey = "native:XLM"

// IsIssued reports whether the type denotes a credit asset with a code and issuer.
func (t AssetType) IsIssued() bool {
	return t == AssetTypeCreditAlphanum4 || t == AssetTypeCreditAlphanum12
}

// AssetInfo describes a Stellar asset.
type AssetInfo struct {
	Code   string    `json:"code"`
	Issuer string    `json:"issuer"`
	Type   AssetType `json:"type"`
}

// IsNative returns true if this asset is the native XLM.
func (a AssetInfo) IsNative() bool {
	return a.Type == AssetTypeNative
}

// Key returns the canonical asset key: "native:XLM" for XLM, "CODE:ISSUER" for credits.
func (a AssetInfo) Key() string {
	if a.IsNative() {
		return NativeAssetKey
	}
	return fmt.Sprintf("%s:%s", a.Code, a.Issuer)
}

// AssetTypeFromCode determines the Stellar asset type from the code string.
func AssetTypeFromCode(code string) AssetType {
	if code == "XLM" || code == "native" {
		return AssetTypeNative
	}
	if len(code) <= 4 {
		return AssetTypeCreditAlphanum4
	}
	return AssetTypeCreditAlphanum12
}

// NewAssetInfo creates an AssetInfo with the correct type inferred from the code.
func NewAssetInfo(code, issuer string) AssetInfo {
	return AssetInfo{
		Code:   code,
		Issuer: issuer,
		Type:   AssetTypeFromCode(code),
	}
}

// ParseAssetKey is the inverse of AssetInfo.Key. Bare "native" is accepted as well.
func ParseAssetKey(key string) (AssetInfo, error) {
	if key == NativeAssetKey || key == "native" {
		return XLMAsset(), nil
	}
	code, issuer, ok := strings.Cut(key, ":")
	if !ok || code == "" || issuer == "" {
		return AssetInfo{}, fmt.Errorf("%w: asset key %q", ErrMalformedInput, key)
	}
	if len(code) > 12 {
		return AssetInfo{}, fmt.Errorf("%w: asset code %q longer than 12 characters", ErrMalformedInput, code)
	}
	return NewAssetInfo(code, issuer), nil
}

var xlmAsset = AssetInfo{
	Code: "XLM",
	Type: AssetTypeNative,
}

// XLMAsset returns the Stellar native asset info.
func XLMAsset() AssetInfo { return xlmAsset }
