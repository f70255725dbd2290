package env

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var Env map[string]string

func GetEnv(key, def string) string {
	// First check our loaded Env map
	if val, ok := Env[key]; ok {
		return val
	}
	// Fallback to OS environment variables (containers set everything there)
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetBool reads key as a boolean. Unparseable values fall back to def.
func GetBool(key string, def bool) bool {
	v, err := strconv.ParseBool(GetEnv(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}

// GetInt reads key as an integer. Unparseable values fall back to def.
func GetInt(key string, def int) int {
	v, err := strconv.Atoi(GetEnv(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}

// SetupEnvFile loads the first .env file found. Running without one is
// allowed; the process environment is used instead.
func SetupEnvFile() {
	envFiles := []string{
		".env",          // Current directory
		"../../.env",    // From cmd/capsreport to project root
		"../../../.env", // Fallback for deeper nesting
	}

	var err error
	for _, envFile := range envFiles {
		Env, err = godotenv.Read(envFile)
		if err == nil {
			return
		}
	}

	Env = map[string]string{}
	log.Printf("No .env file found, using process environment")
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
