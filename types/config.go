package types

import (
	"os"
	"strconv"
	"time"
)

// ConfigFromEnv builds the process-wide config. Called once from main.
func ConfigFromEnv() Config {
	return Config{
		ScratchRoot:     envOr("SCRATCH_ROOT", os.TempDir()),
		ChunkSeconds:    envFloat("CHUNK_SECONDS", 1800),
		ChunkWorkers:    envInt("CHUNK_WORKERS", 2),
		PassageSize:     envInt("CHUNK_SIZE", 500),
		PassageOverlap:  envInt("CHUNK_OVERLAP", 100),
		SummaryPassages: envInt("SUMMARY_PASSAGES", 10),
		WhisperURL:      envOr("WHISPER_URL", "https://api.openai.com/v1/audio/transcriptions"),
		WhisperKey:      os.Getenv("WHISPER_API_KEY"),
		WhisperModel:    envOr("WHISPER_MODEL", "whisper-1"),
		LLMURL:          os.Getenv("LLM_URL"),
		LLMModel:        os.Getenv("LLM_MODEL"),
		EmbeddingURL:    os.Getenv("OLLAMA_EMBEDDING_URL"),
		EmbeddingModel:  os.Getenv("OLLAMA_EMBEDDING_MODEL"),
		ConverterURL:    envOr("CONVERTER_URL", "http://localhost:5001/v1/convert/file"),
	}
}

// LoaderConfigFromEnv builds the loader daemon config.
func LoaderConfigFromEnv() LoaderConfig {
	monitoring := envInt("MONITORING_TIME", 5)
	return LoaderConfig{
		MonitoringTime: time.Duration(monitoring) * time.Second,
		SourceDir:      envOr("LOADER_SOURCE_DIR", "source"),
		ArchiveDir:     envOr("LOADER_ARCHIVE_DIR", "archive"),
		BadDir:         envOr("LOADER_BAD_DIR", "bad"),
		Namespace:      envOr("LOADER_NAMESPACE", "default"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}
