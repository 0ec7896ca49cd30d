// etl Lambda runs one snapshot pipeline cycle per scheduled event.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"

	intlambda "github.com/cinelake/cinelake/internal/lambda"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	deps, err := intlambda.Init(context.Background())
	if err != nil {
		slog.Error("lambda init failed", "error", err)
		os.Exit(1)
	}

	awslambda.Start(func(ctx context.Context, event events.CloudWatchEvent) (intlambda.Response, error) {
		return intlambda.HandleScheduled(ctx, deps, event)
	})
}
