//go:build !protogen

package hours

// NewRemoteProvider is a no-op in builds without generated gRPC stubs; the
// caller falls back to the static provider.
func NewRemoteProvider(_ string, _ string) (Provider, error) {
	return nil, nil
}
