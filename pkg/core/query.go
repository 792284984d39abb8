package core

// ParamType is the engine-facing type of a bound query parameter.
type ParamType string

// Parameter types used by the query builder.
const (
	ParamString ParamType = "STRING"
	ParamInt64  ParamType = "INT64"
)

// Param is one named, typed value bound to a query.
type Param struct {
	Name  string    `json:"name"`
	Type  ParamType `json:"type"`
	Value any       `json:"value"`
}

// QuerySpec is a parameterized, not-yet-executed query plus its bound values.
// Params are ordered: for positional dialects the N-th param is placeholder $N.
type QuerySpec struct {
	SQL    string  `json:"sql"`
	Params []Param `json:"params"`
}

// Param returns the bound parameter with the given name.
func (q QuerySpec) Param(name string) (Param, bool) {
	for _, p := range q.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Args returns the parameter values in binding order.
func (q QuerySpec) Args() []any {
	args := make([]any, len(q.Params))
	for i, p := range q.Params {
		args[i] = p.Value
	}
	return args
}
