package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables
	S3BucketName string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string

	// PasswordSecret is the hex-encoded 32-byte key for the legacy
	// decrypt-and-compare password scheme. Links created today store bcrypt
	// hashes; the key only exists to keep old links working.
	PasswordSecret string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion            string
	SNSEventTopicARN     string // view analytics + notifications
	SNSDeniedTopicARN    string // denied-access reports
	ContentURLTTLMinutes int    // presigned URL lifetime

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Links             string
	Teams             string
	Documents         string
	Viewers           string
	Views             string
	LinkVerifications string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Links:             getEnv("DYNAMO_TABLE_LINKS", "links"),
			Teams:             getEnv("DYNAMO_TABLE_TEAMS", "teams"),
			Documents:         getEnv("DYNAMO_TABLE_DOCUMENTS", "documents"),
			Viewers:           getEnv("DYNAMO_TABLE_VIEWERS", "viewers"),
			Views:             getEnv("DYNAMO_TABLE_VIEWS", "views"),
			LinkVerifications: getEnv("DYNAMO_TABLE_LINK_VERIFICATIONS", "link_verifications"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "dataroom-content"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),

		PasswordSecret: getEnv("PASSWORD_SECRET", ""),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion:            getEnv("SNS_REGION", "us-east-1"),
		SNSEventTopicARN:     getEnv("SNS_EVENT_TOPIC_ARN", ""),
		SNSDeniedTopicARN:    getEnv("SNS_DENIED_TOPIC_ARN", ""),
		ContentURLTTLMinutes: getEnvInt("CONTENT_URL_TTL_MINUTES", 30),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
