// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/pdfrag/ai"
)

// Environment variable names.
const (
	EnvGoogleAPIKey         = "GOOGLE_API_KEY"
	EnvOpenAIAPIKey         = "OPENAI_API_KEY"
	EnvOpenAIBaseURL        = "OPENAI_BASE_URL"
	EnvGoogleEmbeddingModel = "GOOGLE_EMBEDDING_MODEL"
	EnvOpenAIEmbeddingModel = "OPENAI_EMBEDDING_MODEL"
	EnvGoogleChatModel      = "GOOGLE_CHAT_MODEL"
	EnvOpenAIChatModel      = "OPENAI_CHAT_MODEL"
	EnvDatabaseURL          = "DATABASE_URL"
	EnvCollectionName       = "PG_VECTOR_COLLECTION_NAME"
	EnvPDFPath              = "PDF_PATH"
	EnvPDFPassword          = "PDF_PASSWORD"
	EnvEmbeddingCacheDir    = "EMBEDDING_CACHE_DIR"
	EnvBatchSize            = "INGEST_BATCH_SIZE"
	EnvWorkers              = "INGEST_WORKERS"
	EnvMaxAttempts          = "INGEST_MAX_ATTEMPTS"
	EnvNamespaceIDs         = "CHUNK_ID_NAMESPACE"
)

// Defaults for the optional ingestion settings.
const (
	DefaultEnvFile     = ".env"
	DefaultBatchSize   = 100
	DefaultWorkers     = 1
	DefaultMaxAttempts = 1
)

// Config is the explicit configuration shared by the ingest and chat commands.
// It is built once at startup and passed to every component that needs it.
type Config struct {
	// AI holds credentials and model names for both provider families.
	AI *ai.Config

	// DatabaseURL is the connection string of the vector store backend.
	// postgres:// URLs select pgvector; badger:// URLs select the local store.
	DatabaseURL string

	// CollectionName is the logical collection shared by ingestion and chat.
	CollectionName string

	// PDFPath is the source document. Required for ingestion only.
	PDFPath string

	// PDFPassword opens encrypted PDFs. Optional.
	PDFPassword string

	// EmbeddingCacheDir enables the persistent embedding cache when set.
	EmbeddingCacheDir string

	// BatchSize is the number of chunks embedded per request.
	BatchSize int

	// Workers is the number of embedding batches in flight at once.
	Workers int

	// MaxAttempts is the number of tries per embedding batch. 1 disables retry.
	MaxAttempts int

	// NamespaceIDs prefixes chunk ids with the source file name.
	NamespaceIDs bool
}

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	envFile string
	lookup  LookupFunc
}

// WithEnvFile sets the dotenv file to read. An empty path disables dotenv loading.
func WithEnvFile(path string) Option {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// WithLookup replaces os.LookupEnv as the variable source.
func WithLookup(lookup LookupFunc) Option {
	return func(o *loadOptions) {
		if lookup != nil {
			o.lookup = lookup
		}
	}
}

// Load reads the dotenv file when it exists and builds a Config from the
// environment. Variables already set in the process take precedence over the file.
// Load does not validate; call ValidateIngest or ValidateChat.
func Load(opts ...Option) (*Config, error) {
	options := &loadOptions{
		envFile: DefaultEnvFile,
		lookup:  os.LookupEnv,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.envFile != "" {
		if _, err := os.Stat(options.envFile); err == nil {
			if err := godotenv.Load(options.envFile); err != nil {
				return nil, fmt.Errorf("error loading %s file: %w", options.envFile, err)
			}
		}
	}

	return FromLookup(options.lookup)
}

// FromLookup builds a Config from lookup without touching the process environment.
func FromLookup(lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	// Required values and secrets are taken verbatim, so any non-empty value
	// counts as set. Model names and numeric settings are trimmed.
	raw := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	get := func(key string) string {
		return strings.TrimSpace(raw(key))
	}

	cfg := &Config{
		AI: ai.NewConfig(
			ai.WithGoogleAPIKey(raw(EnvGoogleAPIKey)),
			ai.WithOpenAIAPIKey(raw(EnvOpenAIAPIKey)),
			ai.WithOpenAIBaseURL(get(EnvOpenAIBaseURL)),
			ai.WithGoogleEmbeddingModel(get(EnvGoogleEmbeddingModel)),
			ai.WithOpenAIEmbeddingModel(get(EnvOpenAIEmbeddingModel)),
			ai.WithGoogleChatModel(get(EnvGoogleChatModel)),
			ai.WithOpenAIChatModel(get(EnvOpenAIChatModel)),
		),
		DatabaseURL:       raw(EnvDatabaseURL),
		CollectionName:    raw(EnvCollectionName),
		PDFPath:           raw(EnvPDFPath),
		PDFPassword:       raw(EnvPDFPassword),
		EmbeddingCacheDir: get(EnvEmbeddingCacheDir),
	}

	var err error
	if cfg.BatchSize, err = positiveInt(get, EnvBatchSize, DefaultBatchSize); err != nil {
		return nil, err
	}
	if cfg.Workers, err = positiveInt(get, EnvWorkers, DefaultWorkers); err != nil {
		return nil, err
	}
	if cfg.MaxAttempts, err = positiveInt(get, EnvMaxAttempts, DefaultMaxAttempts); err != nil {
		return nil, err
	}
	if raw := get(EnvNamespaceIDs); raw != "" {
		if cfg.NamespaceIDs, err = strconv.ParseBool(raw); err != nil {
			return nil, &ValidationError{Variable: EnvNamespaceIDs, Err: ErrInvalidValue}
		}
	}

	return cfg, nil
}

func positiveInt(get func(string) string, key string, def int) (int, error) {
	raw := get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &ValidationError{Variable: key, Err: ErrInvalidValue}
	}
	return n, nil
}

// ValidateChat checks the settings the chat command needs, in order:
// a provider credential, DATABASE_URL, then PG_VECTOR_COLLECTION_NAME.
func (c *Config) ValidateChat() error {
	if c.AI == nil {
		return &ValidationError{Err: ErrMissingCredentials}
	}
	if _, err := ai.SelectProvider(c.AI); err != nil {
		if errors.Is(err, ai.ErrNoCredentials) {
			return &ValidationError{Err: ErrMissingCredentials}
		}
		return err
	}
	if c.DatabaseURL == "" {
		return &ValidationError{Variable: EnvDatabaseURL, Err: ErrMissingVariable}
	}
	if c.CollectionName == "" {
		return &ValidationError{Variable: EnvCollectionName, Err: ErrMissingVariable}
	}
	return c.AI.Validate()
}

// ValidateIngest runs ValidateChat and additionally requires PDF_PATH.
func (c *Config) ValidateIngest() error {
	if err := c.ValidateChat(); err != nil {
		return err
	}
	if c.PDFPath == "" {
		return &ValidationError{Variable: EnvPDFPath, Err: ErrMissingVariable}
	}
	return nil
}
