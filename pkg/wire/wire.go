// Package wire defines the operation paths and the typed request/response
// shapes exchanged between confhub clients and a host. Both sides import it
// so the JSON contract lives in exactly one place.
package wire

// Operation paths, as they appear on the request URL.
const (
	PathContains = "contains"
	PathGet      = "get"
	PathGetAll   = "getAll"
	PathPut      = "put"
	PathPutAll   = "putAll"
	PathRemove   = "remove"
	PathClear    = "clear"
	PathSave     = "save"
	PathStatus   = "status"
)

// Op is the tagged operation kind a request path resolves to.
type Op int

const (
	OpContains Op = iota
	OpGet
	OpGetAll
	OpPut
	OpPutAll
	OpRemove
	OpClear
	OpSave
	OpStatus
)

// opsByPath is built once; per-request resolution is a single map lookup.
var opsByPath = map[string]Op{
	PathContains: OpContains,
	PathGet:      OpGet,
	PathGetAll:   OpGetAll,
	PathPut:      OpPut,
	PathPutAll:   OpPutAll,
	PathRemove:   OpRemove,
	PathClear:    OpClear,
	PathSave:     OpSave,
	PathStatus:   OpStatus,
}

var pathsByOp = map[Op]string{
	OpContains: PathContains,
	OpGet:      PathGet,
	OpGetAll:   PathGetAll,
	OpPut:      PathPut,
	OpPutAll:   PathPutAll,
	OpRemove:   PathRemove,
	OpClear:    PathClear,
	OpSave:     PathSave,
	OpStatus:   PathStatus,
}

// ParseOp resolves a request path to its operation kind.
// Returns false for paths no operation is registered under.
func ParseOp(path string) (Op, bool) {
	op, ok := opsByPath[path]
	return op, ok
}

// Path returns the URL path for an operation.
func (o Op) Path() string {
	return pathsByOp[o]
}

func (o Op) String() string {
	if p, ok := pathsByOp[o]; ok {
		return p
	}
	return "unknown"
}

// ContainsResult answers a contains query. Contains is 0 or 1.
type ContainsResult struct {
	Key      string `json:"key"`
	Contains int    `json:"contains"`
}

// GetResult answers a get query. Value is null when the key is absent.
type GetResult struct {
	Value *string `json:"value"`
}

// Row is one key/value pair in a getAll snapshot.
type Row struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PutRequest is the body of a put.
type PutRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PutResult echoes the key a put inserted.
type PutResult struct {
	Key string `json:"key"`
}

// PutAllRequest carries a batch of pairs under an explicit field, so config
// keys can never collide with a reserved name in the request shape.
type PutAllRequest struct {
	Entries map[string]string `json:"entries"`
}

// PutAllResult echoes the request target and the number of pairs submitted.
// The count says nothing about per-key effect: overwriting a key with its
// current value still counts.
type PutAllResult struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// CountResult answers remove, clear and save. For save, a count of 0 means
// nothing was durably saved, not that the store is empty.
type CountResult struct {
	Count int `json:"count"`
}

// StatusResult describes a running host.
type StatusResult struct {
	Authority string `json:"authority"`
	Size      int    `json:"size"`
	File      string `json:"file"`
	Degraded  bool   `json:"degraded"`
}
