// Package acl translates the shop catalog API into domain types.
//
// The catalog speaks a PostgREST-style dialect: Portuguese resource and
// field names (clientes, veiculos, pecas, servicos), filters in the query
// string (cliente_id=eq.<id>) and an apikey header. None of that leaks past
// this package. Transport and HTTP failures become domain errors:
//
//   - 404                      -> domain.ErrNotFound
//   - 401/403                  -> domain.ErrForbidden
//   - other 4xx                -> domain.ErrValidation
//   - 5xx, open circuit, I/O   -> domain.ErrUnavailable
package acl
