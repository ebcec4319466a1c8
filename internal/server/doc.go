// Package server provides the thin gin-backed HTTP surface over the
// sync, binding, duplicate, and export engines.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] runs in the order it is added: the first added is the outermost wrapper and executes first.
//
// The [BasicRouter] implementation wraps a [gin.Engine], giving gin's
// JSON binding/rendering to every route while keeping the same
// Use/Handle/Handler contract the rest of the codebase depends on.
//
// # Routes
//
// RegisterRoutes wires POST /sync, /bind, /dedupe, and /export onto a
// BasicRouter. Each handler does the minimum translation from a JSON
// body to the corresponding engine call and back; HTTP routing, CORS,
// and auth middleware are out of scope here by design — remote OAuth
// lives in internal/remote, not this package.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
