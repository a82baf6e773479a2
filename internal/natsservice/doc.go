// Package natsservice serves the wasm-core operations as NATS request/reply
// endpoints and provides a matching client.
//
// Subjects are <prefix>.add, <prefix>.sum_f32, <prefix>.hello and
// <prefix>.describe. Requests carry the JSON request types of the root
// package; replies are entities.Reply envelopes holding either the JSON
// response or an ErrorDetail. Service instances subscribe in a queue group,
// so several processes can share the load.
package natsservice
