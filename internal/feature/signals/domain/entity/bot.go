package entity

// BotConfig describes one scheduled scan.
type BotConfig struct {
	ID            string      `yaml:"id" json:"id"`
	Pairs         []string    `yaml:"pairs" json:"pairs"`
	Timeframes    []Timeframe `yaml:"timeframes" json:"timeframes"`
	AutoBroadcast bool        `yaml:"auto_broadcast" json:"auto_broadcast"`
	ActorID       string      `yaml:"actor_id" json:"actor_id"`
}
