package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/cinelake/cinelake/pkg/types"
)

// DefaultAPIKeyEnv is the environment variable consulted when the config
// names neither an env var nor a secret.
const DefaultAPIKeyEnv = "TMDB_API_KEY"

// SecretsAPI is the slice of the Secrets Manager API the key resolver needs.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ResolveAPIKey returns the TMDB API key. A configured Secrets Manager ARN
// wins over the environment variable; the secret value may be either the
// bare key or a JSON object with an "api_key" field.
func ResolveAPIKey(ctx context.Context, cfg types.TMDBConfig, secrets SecretsAPI) (string, error) {
	if cfg.APIKeySecret != "" {
		if secrets == nil {
			return "", fmt.Errorf("apiKeySecret %s configured but no secrets client available", cfg.APIKeySecret)
		}
		out, err := secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(cfg.APIKeySecret),
		})
		if err != nil {
			return "", fmt.Errorf("reading tmdb api key secret: %w", err)
		}
		key := aws.ToString(out.SecretString)
		var wrapped struct {
			APIKey string `json:"api_key"`
		}
		if json.Unmarshal([]byte(key), &wrapped) == nil && wrapped.APIKey != "" {
			key = wrapped.APIKey
		}
		if key == "" {
			return "", fmt.Errorf("secret %s holds no usable api key", cfg.APIKeySecret)
		}
		return key, nil
	}

	envName := cfg.APIKeyEnv
	if envName == "" {
		envName = DefaultAPIKeyEnv
	}
	key := os.Getenv(envName)
	if key == "" {
		return "", fmt.Errorf("tmdb api key not set: export %s or configure apiKeySecret", envName)
	}
	return key, nil
}
