// Package entities defines the data exchanged across every wasm-core boundary.
// These types serve dual purpose: domain entities AND JSON wire format DTOs.
package entities
