package config

import "os"

type Config struct {
	Port               string
	Env                string
	MongoURI           string
	MongoDB            string
	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	ClientOrigin       string
	UploadDir          string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "3003"),
		Env:                getEnv("ENV", "development"),
		MongoURI:           getEnv("MONGO_URI", ""),
		MongoDB:            getEnv("MONGO_DB", "bloglist"),
		JWTSecret:          getEnv("JWT_SECRET", "supersecretjwtkey"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleCallbackURL:  getEnv("GOOGLE_CALLBACK_URL", "http://localhost:3003/api/auth/google/callback"),
		ClientOrigin:       getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
	}
}

// Production reports whether the server runs with production settings
// (secure cookies, strict same-site)
func (c *Config) Production() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
