package entities

// Metadata describes the module and the operations it exports.
type Metadata struct {
	Name        string          `json:"name" yaml:"name"`
	Version     string          `json:"version" yaml:"version"`
	Description string          `json:"description" yaml:"description"`
	Operations  []OperationInfo `json:"operations" yaml:"operations"`
}

// OperationInfo describes a single exported operation.
type OperationInfo struct {
	// Name is the export name on every binding (wasm, MCP, NATS).
	Name string `json:"name" yaml:"name"`

	// Description is a human-readable summary.
	Description string `json:"description" yaml:"description"`

	// Params and Results are the core wasm value types of the export.
	Params  []string `json:"params" yaml:"params"`
	Results []string `json:"results" yaml:"results"`
}

// Operation looks up an operation by export name.
func (m Metadata) Operation(name string) (OperationInfo, bool) {
	for _, op := range m.Operations {
		if op.Name == name {
			return op, true
		}
	}
	return OperationInfo{}, false
}
