package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBDriver   string // pgx | sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBDSN      string // sqlite file path, or a full postgres DSN overriding the parts above
	DBConnStr  string

	// Creates minimal contests/submissions/user_profiles/options tables when they
	// are missing. Only meant for offline sqlite runs.
	BootstrapCollaboratorTables bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TestCaseDir  string
	UploadDir    string
	UploadPrefix string
	MaxUploadMB  int

	DefaultLanguages []string
	CORSOrigins      []string

	LogLevel  string
	LogFormat string
}

var AppConfig *Config

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:    getEnv("API_PORT", "8080"),
		JWTKey:     []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:     time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBDriver:   getEnv("DB_DRIVER", "pgx"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "online_judge"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),
		DBDSN:      getEnv("DB_DSN", ""),

		BootstrapCollaboratorTables: getEnvAsBool("BOOTSTRAP_COLLABORATOR_TABLES", false),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		TestCaseDir:  getEnv("TEST_CASE_DIR", "./data/test_case"),
		UploadDir:    getEnv("UPLOAD_DIR", "./data/public/upload"),
		UploadPrefix: getEnv("UPLOAD_PREFIX", "/public/upload"),
		MaxUploadMB:  getEnvAsInt("MAX_UPLOAD_MB", 64),

		DefaultLanguages: getEnvAsList("DEFAULT_LANGUAGES", "C,C++,Java,Python2,Python3"),
		CORSOrigins:      getEnvAsList("CORS_ORIGINS", "https://*,http://*"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	AppConfig.DBConnStr = AppConfig.DBDSN
	if AppConfig.DBConnStr == "" && AppConfig.DBDriver != "sqlite" {
		AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
			" port=" + AppConfig.DBPort +
			" user=" + AppConfig.DBUser +
			" password=" + AppConfig.DBPassword +
			" dbname=" + AppConfig.DBName +
			" sslmode=" + AppConfig.DBSslMode
	}
	if AppConfig.DBConnStr == "" {
		AppConfig.DBConnStr = "file:./data/quiz.db"
	}
	return AppConfig
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, fallback), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
