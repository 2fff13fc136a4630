package query

// ---------- Tipos de paginación / ordenamiento ----------

// OffsetPagination para paginación clásica
type OffsetPagination struct {
	Limit  int
	Offset int
}

// Sort indica campo y dirección. Field es una columna de almacenamiento.
// Los nulos van primero en orden ascendente y últimos en descendente.
type Sort struct {
	Field string // ej. "popularity", "release_date", "name"
	Desc  bool
}
