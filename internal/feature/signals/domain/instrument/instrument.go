// Package instrument classifies trading symbols and carries the per-class
// constants (pip size, price precision) the engine needs.
package instrument

import "strings"

// Class is the broad instrument family of a symbol.
type Class string

const (
	ClassForex     Class = "forex"
	ClassForexJPY  Class = "forex_jpy"
	ClassMetal     Class = "metal"
	ClassCrypto    Class = "crypto"
	ClassCryptoBTC Class = "crypto_btc"
	ClassIndex     Class = "index"
	ClassOil       Class = "oil"
)

// PipBufferMultiplier is how many pips a stop is pushed beyond its level.
const PipBufferMultiplier = 5

var (
	metalPrefixes  = []string{"XAU", "XAG", "XPT", "XPD", "GOLD", "SILVER"}
	cryptoPrefixes = []string{"ETH", "SOL", "XRP", "BNB", "ADA", "DOGE", "LTC", "DOT", "AVAX", "LINK", "MATIC", "TRX"}
	indexSymbols   = []string{"US30", "NAS100", "SPX500", "US500", "US100", "GER40", "UK100", "JP225", "ES", "NQ", "YM", "DJI", "NDX", "SPX"}
	oilSymbols     = []string{"USOIL", "UKOIL", "WTI", "BRENT", "CL", "XTIUSD", "XBRUSD"}
)

// Normalize upper-cases a symbol and strips separators ("eur/usd" -> "EURUSD").
func Normalize(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.NewReplacer("/", "", "-", "", "_", "", " ", "").Replace(s)
}

// Classify returns the instrument class of a symbol. Unknown symbols are forex.
func Classify(symbol string) Class {
	s := Normalize(symbol)
	for _, x := range oilSymbols {
		if s == x {
			return ClassOil
		}
	}
	for _, x := range indexSymbols {
		if s == x {
			return ClassIndex
		}
	}
	for _, p := range metalPrefixes {
		if strings.HasPrefix(s, p) {
			return ClassMetal
		}
	}
	if strings.HasPrefix(s, "BTC") {
		return ClassCryptoBTC
	}
	for _, p := range cryptoPrefixes {
		if strings.HasPrefix(s, p) {
			return ClassCrypto
		}
	}
	if strings.HasSuffix(s, "USDT") {
		return ClassCrypto
	}
	if strings.Contains(s, "JPY") {
		return ClassForexJPY
	}
	return ClassForex
}

// IsCrypto reports whether the symbol trades on a crypto venue.
func IsCrypto(symbol string) bool {
	c := Classify(symbol)
	return c == ClassCrypto || c == ClassCryptoBTC
}

// PipSize is the smallest conventional price step of the class.
func PipSize(symbol string) float64 {
	switch Classify(symbol) {
	case ClassForexJPY, ClassOil:
		return 0.01
	case ClassMetal, ClassCrypto:
		return 0.1
	case ClassCryptoBTC:
		return 10
	case ClassIndex:
		return 0.25
	default:
		return 0.0001
	}
}

// PipBuffer is the distance a stop is placed beyond its structural level.
func PipBuffer(symbol string) float64 {
	return PipSize(symbol) * PipBufferMultiplier
}

// Precision is the number of decimal places prices are quoted with.
func Precision(symbol string) int32 {
	switch Classify(symbol) {
	case ClassForexJPY, ClassOil:
		return 3
	case ClassMetal, ClassCrypto, ClassCryptoBTC, ClassIndex:
		return 2
	default:
		return 5
	}
}
