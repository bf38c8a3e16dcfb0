package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	"github.com/imamik/mreks/internal/util/retry"
)

// CallerIdentityAPI is the STS subset used to resolve the account.
type CallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, in *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// ResolveAccount returns the account of the calling identity. Throttled
// calls are retried; any other error fails immediately.
func ResolveAccount(ctx context.Context, api CallerIdentityAPI, opts ...retry.Option) (string, error) {
	var account string
	opts = append([]retry.Option{retry.WithRetryIf(isThrottle)}, opts...)

	err := retry.Do(ctx, func(ctx context.Context) error {
		out, err := api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		if err != nil {
			return err
		}
		if out.Account == nil || *out.Account == "" {
			return retry.Fatal(errors.New("caller identity has no account"))
		}
		account = *out.Account
		return nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to resolve AWS account: %w", err)
	}
	return account, nil
}

func isThrottle(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "Throttling", "ThrottlingException", "RequestLimitExceeded", "TooManyRequestsException":
		return true
	default:
		return false
	}
}
