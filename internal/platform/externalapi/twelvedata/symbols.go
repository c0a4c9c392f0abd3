package twelvedata

import (
	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/domain/instrument"
)

// tickers は内部シンボルからTwelve Dataのティッカーへの変換表です。
// 表にないシンボルはそのまま渡されます。
var tickers = map[string]string{
	// 通貨ペア
	"EURUSD": "EUR/USD",
	"GBPUSD": "GBP/USD",
	"USDJPY": "USD/JPY",
	"USDCHF": "USD/CHF",
	"USDCAD": "USD/CAD",
	"AUDUSD": "AUD/USD",
	"NZDUSD": "NZD/USD",
	"EURGBP": "EUR/GBP",
	"EURJPY": "EUR/JPY",
	"GBPJPY": "GBP/JPY",
	"AUDJPY": "AUD/JPY",
	"EURCHF": "EUR/CHF",
	// 貴金属
	"XAUUSD": "XAU/USD",
	"XAGUSD": "XAG/USD",
	"XPTUSD": "XPT/USD",
	"GOLD":   "XAU/USD",
	"SILVER": "XAG/USD",
	// 暗号資産
	"BTCUSD":  "BTC/USD",
	"BTCUSDT": "BTC/USD",
	"ETHUSD":  "ETH/USD",
	"ETHUSDT": "ETH/USD",
	"SOLUSD":  "SOL/USD",
	"XRPUSD":  "XRP/USD",
	// 指数・商品先物
	"US30":   "DJI",
	"NAS100": "NDX",
	"US100":  "NDX",
	"SPX500": "SPX",
	"US500":  "SPX",
	"GER40":  "DAX",
	"UK100":  "FTSE",
	"JP225":  "N225",
	"USOIL":  "WTI/USD",
	"WTI":    "WTI/USD",
	"UKOIL":  "XBR/USD",
	"BRENT":  "XBR/USD",
}

// intervals は時間足ラベルからTwelve Dataのintervalパラメータへの変換表です。
var intervals = map[entity.Timeframe]string{
	"1m":                "1min",
	entity.Timeframe5m:  "5min",
	entity.Timeframe15m: "15min",
	entity.Timeframe30m: "30min",
	entity.Timeframe1h:  "1h",
	entity.Timeframe4h:  "4h",
	entity.Timeframe1d:  "1day",
}

// Ticker はシンボルをTwelve Dataのティッカーに変換します。
func Ticker(symbol string) string {
	if t, ok := tickers[instrument.Normalize(symbol)]; ok {
		return t
	}
	return symbol
}

// Interval は時間足をTwelve Dataのintervalに変換します。未知の値はそのまま渡されます。
func Interval(tf entity.Timeframe) string {
	if iv, ok := intervals[tf]; ok {
		return iv
	}
	return string(tf)
}
