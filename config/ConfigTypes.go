package config

type config struct {
	Exchange   ExchangeConfig
	Database   DatabaseConfig
	Evaluation EvaluationConfig
	Log        LogConfig
	Symbols    []string
}

type ExchangeConfig struct {
	APIKey    string
	SecretKey string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type EvaluationConfig struct {
	TimeFrame           string
	HistoryDays         int
	TransactionFee      float64
	BidAskSpread        float64
	CalibrationFraction float64
	Signals             []string
	CompareSignal       string
	ScoreFile           string
	SearchMode          string
	Schedule            string // cron spec, empty runs once
	SkipSync            bool
}

type LogConfig struct {
	Level  string
	Pretty bool
}
