package main

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"golang.org/x/sync/errgroup"
)

const (
	// WarmupSource identifies warmup events from a scheduled rule.
	WarmupSource = "warmup"

	// WarmupDelay ensures self-invoked instances overlap.
	WarmupDelay = 75 * time.Millisecond
)

// WarmupEvent represents the warmup payload. A scheduled rule sends
// {"warmup": true}, or {"source": "warmup", "concurrency": N} to also
// self-invoke N more instances.
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// WarmupResponse is the response returned by warmup operations.
type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// invoker is the part of the Lambda API client used for self-invocation.
type invoker interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// IsWarmupEvent checks if the event is a warmup event.
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var peek struct {
		Warmup      bool    `json:"warmup"`
		Source      string  `json:"source"`
		Concurrency float64 `json:"concurrency"`
	}
	if err := json.Unmarshal(event, &peek); err != nil {
		return nil, false
	}
	if !peek.Warmup && peek.Source != WarmupSource {
		return nil, false
	}

	w := &WarmupEvent{Source: WarmupSource}
	if peek.Concurrency > 0 {
		w.Concurrency = int(peek.Concurrency)
	}
	return w, true
}

// HandleWarmup answers a warmup event, self-invoking warmup.Concurrency
// more instances when asked to.
func HandleWarmup(ctx context.Context, inv invoker, warmup *WarmupEvent) (any, error) {
	instancesWarmed := 1 // This instance counts as 1

	if warmup.Concurrency > 0 && inv != nil {
		if err := selfInvoke(ctx, inv, warmup.Concurrency); err == nil {
			instancesWarmed += warmup.Concurrency
		}
		// Stay alive long enough for the children to land elsewhere.
		time.Sleep(WarmupDelay)
	}

	return WarmupResponse{
		Status:          "warm",
		InstancesWarmed: instancesWarmed,
	}, nil
}

// selfInvoke invokes this Lambda function count times asynchronously.
func selfInvoke(ctx context.Context, inv invoker, count int) error {
	// Children get concurrency 0 so they never invoke further.
	payload, err := json.Marshal(WarmupEvent{Source: WarmupSource})
	if err != nil {
		return err
	}
	functionName := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			_, err := inv.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(functionName),
				InvocationType: types.InvocationTypeEvent, // Async invocation
				Payload:        payload,
			})
			return err
		})
	}
	return g.Wait()
}

// lazyInvoker creates the Lambda API client on first use, so cold starts
// that never see a concurrent warmup skip loading AWS credentials.
type lazyInvoker struct{}

var (
	clientOnce sync.Once
	client     *lambdasdk.Client
	clientErr  error
)

func (lazyInvoker) Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error) {
	clientOnce.Do(func() {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			clientErr = err
			return
		}
		client = lambdasdk.NewFromConfig(cfg)
	})
	if clientErr != nil {
		return nil, clientErr
	}
	return client.Invoke(ctx, params, optFns...)
}
