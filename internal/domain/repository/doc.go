// Package repository define las interfaces de repositorio de dominio.
//
// Estas interfaces representan contratos de negocio, independientes del
// almacenamiento subyacente (PostgreSQL, memoria, etc.).
//
// Las implementaciones concretas viven en internal/store/.
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Los tokens y códigos se persisten SOLO hasheados; el plaintext nunca
//     toca el storage
//   - Errores de dominio están en errors.go
package repository
