package domain

import "context"

type IPProvider interface {
	FetchIP(ctx context.Context) (LookupResult, error)
}
