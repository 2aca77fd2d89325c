package checks

import "context"

// Pinger is implemented by buckets that can check their container is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckContainer pings b when it supports it. Buckets without Ping always pass.
func CheckContainer(ctx context.Context, b any) error {
	p, ok := b.(Pinger)
	if !ok {
		return nil
	}
	return p.Ping(ctx)
}
