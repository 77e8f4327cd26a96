package types

// JSONMap stores loosely structured string metadata as a jsonb column.
type JSONMap map[string]string
