// Package option holds the generic functional option used by stores, pingers, resolvers and the prober.
package option

// Option configures a value of type T.
type Option[T any] func(*T)

// Apply runs every option against v in order.
func Apply[T any](v *T, opts ...Option[T]) {
	for _, opt := range opts {
		opt(v)
	}
}
