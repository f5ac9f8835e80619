package config

import "os"

type Config struct {
	HTTPAddr  string
	GRPCAddr  string
	MySQLDSN  string
	RedisAddr string

	GeminiAPIKey string
	GeminiModel  string

	StockPolicy string
	SeedOnStart bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() Config {
	return Config{
		HTTPAddr:  getenv("LEDGER_HTTP_ADDR", ":8080"),
		GRPCAddr:  getenv("LEDGER_GRPC_ADDR", ":50051"),
		MySQLDSN:  getenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/smartor?parseTime=true"),
		RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-2.0-flash"),

		StockPolicy: getenv("STOCK_POLICY", "allow-negative"),
		SeedOnStart: getenv("LEDGER_SEED", "false") == "true",
	}
}
