// Package orchestrator is the stateless coupling layer between an
// external request/response envelope and the sync, binding, duplicate,
// and export engines. It holds no state of its own between calls.
package orchestrator
